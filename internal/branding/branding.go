// Package branding provides compile-time identity values for the CLI.
//
// The product name, file names and environment prefix live in branding.yaml
// next to this file and are baked into the binary with //go:embed.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	HomeDir      string `yaml:"home_dir"`
	EnvPrefix    string `yaml:"env_prefix"`
	GoModule     string `yaml:"go_module"`
	RegistryFile string `yaml:"registry_file"`
	TrackingFile string `yaml:"tracking_file"`
	BranchPrefix string `yaml:"branch_prefix"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:      "open-code",
			DisplayName:  "Open Code",
			Description:  "Track, detect and contribute back components copied from upstream repositories",
			HomeDir:      ".open-code",
			EnvPrefix:    "OPEN_CODE",
			GoModule:     "github.com/open-code-labs/open-code",
			RegistryFile: ".open-code.json",
			TrackingFile: ".open-code.local.json",
			BranchPrefix: "open-code",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "open-code").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".open-code").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "OPEN_CODE").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// RegistryFile returns the file name of the project registry (".open-code.json").
func RegistryFile() string { load(); return defaults.RegistryFile }

// RegistryBaseName returns the registry file name without its extension,
// used to look up the YAML variants and the package.json key.
func RegistryBaseName() string {
	load()
	name := defaults.RegistryFile
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// TrackingFile returns the file name of the local tracking store.
func TrackingFile() string { load(); return defaults.TrackingFile }

// BranchPrefix returns the namespace used for contribution branches.
func BranchPrefix() string { load(); return defaults.BranchPrefix }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("log_level") → "OPEN_CODE_LOG_LEVEL".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
