// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirEnv overrides the chartkit data directory.
	DataDirEnv = "CHARTKIT_DATA_DIR"

	// ReportsFileName is the default report definition file inside the data directory.
	ReportsFileName = "reports.yaml"
)

// GetDataDir returns the chartkit data directory.
//
// Priority:
// 1. CHARTKIT_DATA_DIR environment variable (if set and non-empty)
// 2. ~/.chartkit (default)
//
// The returned path is always absolute. A leading ~ is expanded and relative
// paths are resolved against the working directory.
//
// This is read straight from the environment, not from viper, because it is
// needed to locate the config file itself.
//
// Examples:
//
//	CHARTKIT_DATA_DIR=/srv/charts   -> /srv/charts
//	CHARTKIT_DATA_DIR=~/charts      -> /home/user/charts
//	CHARTKIT_DATA_DIR not set       -> /home/user/.chartkit
func GetDataDir() string {
	if dataDir := os.Getenv(DataDirEnv); dataDir != "" {
		return expandPath(dataDir)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".chartkit"
	}
	return filepath.Join(homeDir, ".chartkit")
}

// GetSubDir returns a subdirectory within the data directory.
func GetSubDir(subdir string) string {
	return filepath.Join(GetDataDir(), subdir)
}

// DefaultReportsPath returns the report definition file in the data directory.
func DefaultReportsPath() string {
	return filepath.Join(GetDataDir(), ReportsFileName)
}

// ExpandPath expands a leading ~ and makes the path absolute.
// Empty input is returned unchanged.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	return expandPath(path)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
