// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlexport writes sheets as CSV files.
package tictlexport

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bufdev/tictl/internal/pkg/cliio"
	"github.com/bufdev/tictl/internal/pkg/sheet"
	"github.com/bufdev/tictl/internal/standard/xos"
	"github.com/bufdev/tictl/internal/tictl/tictlsheets"
)

// CSVDir writes each sheet to <dir>/<name>.csv, replacing any previous file.
type CSVDir struct {
	dirPath string
}

// NewCSVDir returns a new CSVDir, creating dirPath if needed.
func NewCSVDir(dirPath string) (*CSVDir, error) {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating CSV directory: %w", err)
	}
	return &CSVDir{dirPath: dirPath}, nil
}

// WriteTable writes table as the CSV file of the named sheet.
func (c *CSVDir) WriteTable(_ context.Context, name string, table *sheet.Table) error {
	data, err := encodeCSV(table)
	if err != nil {
		return fmt.Errorf("encoding sheet %s: %w", name, err)
	}
	if err := xos.WriteFileAtomic(filepath.Join(c.dirPath, FileName(name)), data, 0o644); err != nil {
		return fmt.Errorf("writing sheet %s: %w", name, err)
	}
	return nil
}

// WriteZip writes a zip archive with one CSV entry per sheet.
func WriteZip(writer io.Writer, sheets []*tictlsheets.Sheet) (retErr error) {
	zipWriter := zip.NewWriter(writer)
	defer func() {
		retErr = errors.Join(retErr, zipWriter.Close())
	}()
	for _, s := range sheets {
		data, err := encodeCSV(s.Table)
		if err != nil {
			return fmt.Errorf("encoding sheet %s: %w", s.Name, err)
		}
		entryWriter, err := zipWriter.CreateHeader(
			&zip.FileHeader{
				Name:     FileName(s.Name),
				Method:   zip.Deflate,
				Modified: s.UpdatedAt,
			},
		)
		if err != nil {
			return fmt.Errorf("adding sheet %s: %w", s.Name, err)
		}
		if _, err := entryWriter.Write(data); err != nil {
			return fmt.Errorf("adding sheet %s: %w", s.Name, err)
		}
	}
	return nil
}

// FileName returns the CSV file name of a sheet.
func FileName(name string) string {
	return name + ".csv"
}

// *** PRIVATE ***

func encodeCSV(table *sheet.Table) ([]byte, error) {
	var buffer bytes.Buffer
	if err := cliio.WriteCSVRecords(&buffer, table.Records()); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
