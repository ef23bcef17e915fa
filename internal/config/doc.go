// Package config manages user-level settings stored at ~/.open-code/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the GitHub token and API endpoint used by the contribute command.
package config
