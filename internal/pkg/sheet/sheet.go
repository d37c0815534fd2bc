// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sheet provides typed tables for display surfaces.
//
// A Table is an ordered header of typed columns plus rows of raw cell values.
// Raw values are canonical strings (decimals without grouping or currency
// symbols, empty for unknown). Formatting for humans is applied only at
// display time via FormatCell, so stored tables stay machine-readable.
package sheet

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Kind is the display kind of a column.
type Kind int

const (
	// KindText is displayed verbatim.
	KindText Kind = iota + 1
	// KindQuantity is a decimal displayed with up to 8 fraction digits.
	KindQuantity
	// KindMoney is an amount in the reporting currency.
	KindMoney
)

// quantityPlaces is the maximum number of fraction digits shown for quantities.
const quantityPlaces = 8

// String returns the persisted name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindQuantity:
		return "quantity"
	case KindMoney:
		return "money"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses a persisted kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "text":
		return KindText, nil
	case "quantity":
		return KindQuantity, nil
	case "money":
		return KindMoney, nil
	default:
		return 0, fmt.Errorf("unknown column kind %q", s)
	}
}

// Column is a named, typed table column.
type Column struct {
	Name string
	Kind Kind
}

// Table is a header of columns plus rows of raw cell values.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// NewTable returns an empty table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{
		Columns: columns,
	}
}

// Append adds a row. The row must have exactly one value per column.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Header returns the column names.
func (t *Table) Header() []string {
	header := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		header[i] = column.Name
	}
	return header
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, column := range t.Columns {
		if column.Name == name {
			return i
		}
	}
	return -1
}

// Records returns the header followed by the raw rows.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header())
	return append(records, t.Rows...)
}

// FormattedRows returns the rows with every cell formatted for display.
func (t *Table) FormattedRows(currencyCode string) [][]string {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		formatted := make([]string, len(row))
		for j, value := range row {
			formatted[j] = FormatCell(t.Columns[j].Kind, value, currencyCode)
		}
		rows[i] = formatted
	}
	return rows
}

// FormatCell formats a raw value for display.
//
// Empty values stay empty. Values that do not parse as decimals are returned
// unchanged so a stray label never breaks rendering.
func FormatCell(kind Kind, value string, currencyCode string) string {
	if value == "" || kind == KindText {
		return value
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}
	switch kind {
	case KindQuantity:
		return d.Round(quantityPlaces).String()
	case KindMoney:
		return FormatMoney(d, currencyCode)
	default:
		return value
	}
}

// FormatMoney formats an amount in the given ISO currency, e.g. "1,530.00 ₽".
//
// Currencies unknown to go-money are shown with two fraction digits and the code.
func FormatMoney(amount decimal.Decimal, currencyCode string) string {
	currency := money.GetCurrency(strings.ToUpper(currencyCode))
	if currency == nil {
		return amount.StringFixed(2) + " " + currencyCode
	}
	minor := amount.Shift(int32(currency.Fraction)).Round(0)
	return currency.Formatter().Format(minor.IntPart())
}
