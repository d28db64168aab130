// Package config loads r3 settings and resolves which credentials to use.
package config

import (
	"os"
	"path/filepath"

	"github.com/remoteit/remoteit-go/pkg/credentials"
)

// ConfigDir is the directory under the user's home holding remote.it files.
const ConfigDir = ".remoteit"

// SettingsFileName is the optional r3 settings file in ConfigDir.
const SettingsFileName = "r3.yaml"

// Directory returns ~/.remoteit, or "" when the home directory is unknown.
func Directory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ConfigDir)
}

// DefaultSettingsPath returns ~/.remoteit/r3.yaml, or "" when the home
// directory is unknown.
func DefaultSettingsPath() string {
	dir := Directory()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, SettingsFileName)
}

// DefaultCredentialsPath returns ~/.remoteit/credentials, or "" when the home
// directory is unknown.
func DefaultCredentialsPath() string {
	path, err := credentials.DefaultPath()
	if err != nil {
		return ""
	}
	return path
}
