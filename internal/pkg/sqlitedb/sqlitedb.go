// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sqlitedb opens SQLite databases with profile-specific pragmas.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Profile selects durability and speed trade-offs for a database.
type Profile string

const (
	// ProfileCache favors speed for data that can be refetched.
	ProfileCache Profile = "cache"
	// ProfileStandard is the default for data the user reads back.
	ProfileStandard Profile = "standard"
)

// pingTimeout bounds the initial connection check.
const pingTimeout = 5 * time.Second

// Open opens (creating if needed) the SQLite database at path, applies the
// profile pragmas, and runs each schema statement.
func Open(ctx context.Context, path string, profile Profile, schema ...string) (_ *sql.DB, retErr error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", connectionString(absPath, profile))
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", absPath, err)
	}
	defer func() {
		if retErr != nil {
			retErr = errors.Join(retErr, db.Close())
		}
	}()
	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("pinging database %s: %w", absPath, err)
	}
	for _, statement := range schema {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return nil, fmt.Errorf("applying schema to %s: %w", absPath, err)
		}
	}
	return db, nil
}

// *** PRIVATE ***

// connectionString builds the modernc.org/sqlite DSN with pragmas for the profile.
func connectionString(path string, profile Profile) string {
	connStr := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	switch profile {
	case ProfileCache:
		connStr += "&_pragma=synchronous(OFF)"
		connStr += "&_pragma=temp_store(MEMORY)"
	default:
		connStr += "&_pragma=synchronous(NORMAL)"
	}
	return connStr
}
