// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlsheets stores named sheets in SQLite.
//
// A sheet is a typed table plus a filter flag. Writing a sheet fully replaces
// its previous content and assigns a new revision.
package tictlsheets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bufdev/tictl/internal/pkg/sheet"
	"github.com/bufdev/tictl/internal/pkg/sqlitedb"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrSheetNotFound is returned when a sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Info describes a stored sheet.
type Info struct {
	Name      string    `json:"name"`
	Rows      int       `json:"rows"`
	Revision  string    `json:"revision"`
	Filtered  bool      `json:"filtered"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sheet is a stored sheet with its table.
type Sheet struct {
	Info
	Table *sheet.Table
}

// Store is a sheet store.
type Store interface {
	// WriteTable replaces the named sheet with table.
	//
	// Any existing filter is removed and the content cleared before the new
	// rows are written. A filter is created when table has at least one row.
	// A table with no columns leaves the sheet cleared.
	WriteTable(ctx context.Context, name string, table *sheet.Table) error
	// ListSheets lists sheets by name.
	ListSheets(ctx context.Context) ([]Info, error)
	// ReadSheet reads a sheet, or returns ErrSheetNotFound.
	ReadSheet(ctx context.Context, name string) (*Sheet, error)
	// DropAllFilters removes the filter from every sheet and returns how many were removed.
	DropAllFilters(ctx context.Context) (int64, error)
	// Close closes the store.
	Close() error
}

// StoreOption is an option for Open.
type StoreOption func(*store)

// StoreWithClock sets the clock used for update times.
func StoreWithClock(now func() time.Time) StoreOption {
	return func(store *store) {
		store.now = now
	}
}

// Open opens the sheet store at path.
func Open(ctx context.Context, path string, options ...StoreOption) (Store, error) {
	db, err := sqlitedb.Open(ctx, path, sqlitedb.ProfileStandard, schema...)
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

// *** PRIVATE ***

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sheets (
		name TEXT PRIMARY KEY,
		columns BLOB NOT NULL,
		revision TEXT NOT NULL,
		filtered INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sheet_rows (
		sheet TEXT NOT NULL REFERENCES sheets(name) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		cells BLOB NOT NULL,
		PRIMARY KEY (sheet, idx)
	)`,
}

type store struct {
	db  *sql.DB
	now func() time.Time
}

type storedColumn struct {
	Name string `msgpack:"name"`
	Kind string `msgpack:"kind"`
}

func (s *store) WriteTable(ctx context.Context, name string, table *sheet.Table) (retErr error) {
	if name == "" {
		return errors.New("sheet name is required")
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			return fmt.Errorf("sheet %s: row %d has %d values, table has %d columns", name, i, len(row), len(table.Columns))
		}
	}
	columns := make([]storedColumn, len(table.Columns))
	for i, column := range table.Columns {
		columns[i] = storedColumn{Name: column.Name, Kind: column.Kind.String()}
	}
	columnsData, err := msgpack.Marshal(columns)
	if err != nil {
		return fmt.Errorf("encoding columns of sheet %s: %w", name, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("writing sheet %s: %w", name, err)
	}
	defer func() {
		if retErr != nil {
			retErr = errors.Join(retErr, tx.Rollback())
		}
	}()
	if _, err := tx.ExecContext(ctx, `UPDATE sheets SET filtered = 0 WHERE name = ?`, name); err != nil {
		return fmt.Errorf("removing filter of sheet %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet = ?`, name); err != nil {
		return fmt.Errorf("clearing sheet %s: %w", name, err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO sheets (name, columns, revision, filtered, updated_at) VALUES (?, ?, ?, 0, ?)
		ON CONFLICT(name) DO UPDATE SET columns = excluded.columns, revision = excluded.revision, updated_at = excluded.updated_at`,
		name, columnsData, uuid.NewString(), s.now().UnixNano(),
	); err != nil {
		return fmt.Errorf("writing sheet %s: %w", name, err)
	}
	if len(table.Columns) > 0 {
		for i, row := range table.Rows {
			cells, err := msgpack.Marshal(row)
			if err != nil {
				return fmt.Errorf("encoding row %d of sheet %s: %w", i, name, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO sheet_rows (sheet, idx, cells) VALUES (?, ?, ?)`, name, i, cells); err != nil {
				return fmt.Errorf("writing row %d of sheet %s: %w", i, name, err)
			}
		}
		if len(table.Rows) > 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE sheets SET filtered = 1 WHERE name = ?`, name); err != nil {
				return fmt.Errorf("creating filter of sheet %s: %w", name, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sheet %s: %w", name, err)
	}
	return nil
}

func (s *store) ListSheets(ctx context.Context) (_ []Info, retErr error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT s.name, s.revision, s.filtered, s.updated_at, COUNT(r.idx)
		FROM sheets s LEFT JOIN sheet_rows r ON r.sheet = s.name
		GROUP BY s.name ORDER BY s.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	defer func() {
		retErr = errors.Join(retErr, rows.Close())
	}()
	var infos []Info
	for rows.Next() {
		var info Info
		var updatedAt int64
		if err := rows.Scan(&info.Name, &info.Revision, &info.Filtered, &updatedAt, &info.Rows); err != nil {
			return nil, fmt.Errorf("listing sheets: %w", err)
		}
		info.UpdatedAt = time.Unix(0, updatedAt).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	return infos, nil
}

func (s *store) ReadSheet(ctx context.Context, name string) (_ *Sheet, retErr error) {
	var columnsData []byte
	var updatedAt int64
	result := &Sheet{Info: Info{Name: name}}
	err := s.db.QueryRowContext(
		ctx,
		`SELECT columns, revision, filtered, updated_at FROM sheets WHERE name = ?`,
		name,
	).Scan(&columnsData, &result.Revision, &result.Filtered, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", name, err)
	}
	result.UpdatedAt = time.Unix(0, updatedAt).UTC()
	var storedColumns []storedColumn
	if err := msgpack.Unmarshal(columnsData, &storedColumns); err != nil {
		return nil, fmt.Errorf("decoding columns of sheet %s: %w", name, err)
	}
	columns := make([]sheet.Column, len(storedColumns))
	for i, storedColumn := range storedColumns {
		kind, err := sheet.ParseKind(storedColumn.Kind)
		if err != nil {
			return nil, fmt.Errorf("sheet %s column %s: %w", name, storedColumn.Name, err)
		}
		columns[i] = sheet.Column{Name: storedColumn.Name, Kind: kind}
	}
	result.Table = sheet.NewTable(columns...)
	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY idx`, name)
	if err != nil {
		return nil, fmt.Errorf("reading rows of sheet %s: %w", name, err)
	}
	defer func() {
		retErr = errors.Join(retErr, rows.Close())
	}()
	for rows.Next() {
		var cells []byte
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("reading rows of sheet %s: %w", name, err)
		}
		var row []string
		if err := msgpack.Unmarshal(cells, &row); err != nil {
			return nil, fmt.Errorf("decoding row of sheet %s: %w", name, err)
		}
		if err := result.Table.Append(row); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows of sheet %s: %w", name, err)
	}
	result.Rows = len(result.Table.Rows)
	return result, nil
}

func (s *store) DropAllFilters(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE sheets SET filtered = 0 WHERE filtered = 1`)
	if err != nil {
		return 0, fmt.Errorf("dropping filters: %w", err)
	}
	return result.RowsAffected()
}

func (s *store) Close() error {
	return s.db.Close()
}
