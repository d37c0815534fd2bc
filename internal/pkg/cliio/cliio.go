// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cliio provides output formatting for CLI commands (table, CSV, JSON).
package cliio

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bufdev/tictl/internal/pkg/sheet"
)

// Format represents the output format for CLI commands.
type Format string

const (
	// FormatTable is the default table output format.
	FormatTable Format = "table"
	// FormatCSV is the CSV output format.
	FormatCSV Format = "csv"
	// FormatJSON is the JSON output format.
	FormatJSON Format = "json"
)

// ParseFormat parses a string into a Format, returning an error for unknown formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q, must be one of: table, csv, json", s)
	}
}

// WriteSheet writes a sheet table in the given format.
//
// Table output shows display-formatted values, with totalsRow appended after
// a blank line when non-empty. CSV and JSON output carry the raw values and
// ignore totalsRow.
func WriteSheet(writer io.Writer, format Format, table *sheet.Table, currencyCode string, totalsRow []string) error {
	switch format {
	case FormatTable:
		if len(totalsRow) > 0 {
			return WriteTableWithTotals(writer, table.Header(), table.FormattedRows(currencyCode), totalsRow)
		}
		return WriteTable(writer, table.Header(), table.FormattedRows(currencyCode))
	case FormatCSV:
		return WriteCSVRecords(writer, table.Records())
	case FormatJSON:
		header := table.Header()
		objects := make([]orderedObject, len(table.Rows))
		for i, row := range table.Rows {
			objects[i] = orderedObject{keys: header, values: row}
		}
		return WriteJSON(writer, objects...)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteTable writes tabular data to the writer using tabwriter for aligned columns.
func WriteTable(writer io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	if err := writeRows(tw, headers, rows); err != nil {
		return err
	}
	return tw.Flush()
}

// WriteTableWithTotals writes a table followed by a blank line and a totals row,
// all through the same tabwriter so columns align between data and totals.
func WriteTableWithTotals(writer io.Writer, headers []string, rows [][]string, totalsRow []string) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	if err := writeRows(tw, headers, rows); err != nil {
		return err
	}
	// Tabs keep the blank line inside the column layout.
	blankRow := make([]string, len(headers))
	if _, err := fmt.Fprintln(tw, strings.Join(blankRow, "\t")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, strings.Join(totalsRow, "\t")); err != nil {
		return err
	}
	return tw.Flush()
}

// WriteCSVRecords writes CSV records to the writer.
func WriteCSVRecords(writer io.Writer, records [][]string) error {
	csvWriter := csv.NewWriter(writer)
	// WriteAll flushes.
	return csvWriter.WriteAll(records)
}

// WriteJSON writes objects as JSON with newlines between each object.
func WriteJSON[O any](writer io.Writer, objects ...O) error {
	for _, object := range objects {
		data, err := json.Marshal(object)
		if err != nil {
			return err
		}
		if _, err := writer.Write(data); err != nil {
			return err
		}
		if _, err := writer.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return nil
}

// *** PRIVATE ***

func writeRows(writer io.Writer, headers []string, rows [][]string) error {
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// orderedObject is a JSON object whose keys keep column order.
type orderedObject struct {
	keys   []string
	values []string
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buffer.WriteByte(',')
		}
		keyData, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valueData, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buffer.Write(keyData)
		buffer.WriteByte(':')
		buffer.Write(valueData)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}
