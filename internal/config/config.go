package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Known setting keys.
const (
	KeyGitHubToken  = "github.token"
	KeyGitHubAPIURL = "github.api_url"
	KeyComponentDir = "component_dir"
	KeyLogLevel     = "log_level"
)

// Defaults applied when neither the config file nor the environment sets a key.
const (
	DefaultGitHubAPIURL = "https://api.github.com"
	DefaultComponentDir = "./components"
	DefaultLogLevel     = "warn"
)

// Dir returns the path to the config directory (~/.open-code/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.open-code/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// OPEN_CODE_GITHUB_TOKEN and GITHUB_TOKEN both feed github.token.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyGitHubAPIURL, DefaultGitHubAPIURL)
	viper.SetDefault(KeyComponentDir, DefaultComponentDir)
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)
	_ = viper.BindEnv(KeyGitHubToken, branding.EnvVar("github_token"), "GITHUB_TOKEN")

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GitHubToken returns the configured personal access token, if any.
func GitHubToken() string { return Get(KeyGitHubToken) }

// GitHubAPIURL returns the base URL of the hosting API.
func GitHubAPIURL() string { return Get(KeyGitHubAPIURL) }

// ComponentDir returns the default component directory offered by init.
func ComponentDir() string { return Get(KeyComponentDir) }

// LogLevel returns the configured diagnostic log level.
func LogLevel() string { return Get(KeyLogLevel) }

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
