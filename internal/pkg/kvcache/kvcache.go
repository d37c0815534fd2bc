// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package kvcache provides a time-bounded key-value store backed by SQLite.
//
// Entries carry an absolute expiry. Expired entries are never returned and are
// removed lazily on read or in bulk by Purge. Values are opaque bytes; GetValue
// and PutValue encode arbitrary values with msgpack.
package kvcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bufdev/tictl/internal/pkg/sqlitedb"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("kvcache: not found")

// Store is a key-value store with per-entry time-to-live.
type Store interface {
	// Get returns the value for key, or ErrNotFound if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key for ttl. A non-positive ttl is an error.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Purge removes all expired entries and returns how many were removed.
	Purge(ctx context.Context) (int64, error)
	// Close releases the underlying database.
	Close() error
}

// StoreOption is a functional option for Open.
type StoreOption func(*store)

// StoreWithClock sets the clock used for expiry. The default is time.Now.
func StoreWithClock(now func() time.Time) StoreOption {
	return func(s *store) {
		s.now = now
	}
}

// Open opens the cache database at path, creating it if needed.
func Open(ctx context.Context, path string, options ...StoreOption) (Store, error) {
	db, err := sqlitedb.Open(ctx, path, sqlitedb.ProfileCache, schema)
	if err != nil {
		return nil, err
	}
	s := &store{
		db:  db,
		now: time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// GetValue reads key from store and decodes it into a T.
func GetValue[T any](ctx context.Context, store Store, key string) (T, error) {
	var value T
	data, err := store.Get(ctx, key)
	if err != nil {
		return value, err
	}
	if err := msgpack.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("decoding cached value for %q: %w", key, err)
	}
	return value, nil
}

// PutValue encodes value and stores it under key for ttl.
func PutValue[T any](ctx context.Context, store Store, key string, value T, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %q: %w", key, err)
	}
	return store.Put(ctx, key, data, ttl)
}

// *** PRIVATE ***

const schema = `CREATE TABLE IF NOT EXISTS entries (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	expires_at INTEGER NOT NULL
)`

type store struct {
	db  *sql.DB
	now func() time.Time
}

func (s *store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, `SELECT value, expires_at FROM entries WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	if s.now().UnixNano() >= expiresAt {
		if err := s.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %v", ttl)
	}
	expiresAt := s.now().Add(ttl).UnixNano()
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

func (s *store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

func (s *store) Purge(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purging expired entries: %w", err)
	}
	return result.RowsAffected()
}

func (s *store) Close() error {
	return s.db.Close()
}
