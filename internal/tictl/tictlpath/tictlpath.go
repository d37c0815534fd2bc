// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlpath derives file paths from the tictl base directory.
// All layout is defined here so callers don't duplicate path construction logic.
//
// The base directory (--dir flag) contains:
//
//	tictl.yaml      Config file
//	.env            Optional TINVEST_TOKEN fallback
//	sheets.db       Sheet store, latest snapshot of every sheet
//	cache/          Blow-away-safe caches
//	  instruments.db  Instrument metadata cache
package tictlpath

import "path/filepath"

const (
	// ConfigFileName is the well-known config file name within the base directory.
	ConfigFileName = "tictl.yaml"
	// EnvFileName is the name of the optional dotenv file within the base directory.
	EnvFileName = ".env"
)

// ConfigFilePath returns the path to the config file within the base directory.
func ConfigFilePath(dirPath string) string {
	return filepath.Join(dirPath, ConfigFileName)
}

// EnvFilePath returns the path to the dotenv file within the base directory.
func EnvFilePath(dirPath string) string {
	return filepath.Join(dirPath, EnvFileName)
}

// SheetsDBPath returns the path to the sheet store database.
func SheetsDBPath(dirPath string) string {
	return filepath.Join(dirPath, "sheets.db")
}

// CacheDirPath returns the directory for blow-away-safe caches.
func CacheDirPath(dirPath string) string {
	return filepath.Join(dirPath, "cache")
}

// InstrumentCacheDBPath returns the path to the instrument metadata cache database.
func InstrumentCacheDBPath(dirPath string) string {
	return filepath.Join(dirPath, "cache", "instruments.db")
}
