// Package config provides configuration management for stockdeck
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application name
	AppName = "stockdeck"

	// AppDirName is the directory name for app data
	AppDirName = ".stockdeck"
)

// GetAppDir returns the application data directory (~/.stockdeck)
func GetAppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, AppDirName), nil
}

// GetConfigPath returns the config file path
func GetConfigPath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "config.yaml"), nil
}

// GetProfilePath returns the JSON profile record path
func GetProfilePath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "profile.json"), nil
}

// GetProfileDBPath returns the sqlite profile database path
func GetProfileDBPath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "profile.db"), nil
}

// GetLogPath returns the default log file path
func GetLogPath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "stockdeck.log"), nil
}
