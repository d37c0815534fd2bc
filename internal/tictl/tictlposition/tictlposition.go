// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlposition defines the canonical position record and its categories.
//
// A Record is one flat row per (account, instrument) or (account, cash currency)
// with every monetary field in the single reporting currency. Aggregate rows
// produced by tictlaggregate use the same Record type with AccountID set to
// AllAccounts.
package tictlposition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bufdev/tictl/internal/pkg/sheet"
	"github.com/shopspring/decimal"
)

const (
	// AllAccounts is the account ID of aggregate rows.
	AllAccounts = "ALL"
	// TypeSecurity is the fallback type when a row's type is unknown or ambiguous.
	TypeSecurity = "security"
)

// Record is a canonical position row.
//
// Optional numeric fields use decimal.NullDecimal; an invalid value is
// rendered blank and means "unknown", which is distinct from a known zero.
type Record struct {
	// AccountID is the source account, or AllAccounts on aggregate rows.
	AccountID string `json:"account_id"`
	// Type is the raw lower-case instrument type, or TypeMoney for cash.
	Type string `json:"type"`
	// FIGI is the instrument identifier. Empty for cash and aggregate rows.
	FIGI string `json:"figi"`
	// Ticker may be empty.
	Ticker string `json:"ticker"`
	// Name is the display name.
	Name string `json:"name"`
	// Lot is the number of pieces per tradable lot.
	//
	// At least 1 on position and cash rows. Zero means blank, which only
	// happens on aggregate rows whose merged rows disagree.
	Lot int64 `json:"lot"`
	// QuantityLots is QuantityPieces / Lot.
	QuantityLots decimal.NullDecimal `json:"quantity_lots"`
	// QuantityPieces is the quantity in base units.
	QuantityPieces decimal.NullDecimal `json:"quantity_pcs"`
	// CurrentPricePerPiece is 0 when the price is unknown.
	CurrentPricePerPiece decimal.NullDecimal `json:"current_price_per_piece"`
	// AvgPricePerPiece is blank when the average price is unknown.
	AvgPricePerPiece decimal.NullDecimal `json:"avg_price_per_piece"`
	// PricePerLot is CurrentPricePerPiece * Lot.
	PricePerLot decimal.NullDecimal `json:"price_per_lot"`
	// PositionValue is CurrentPricePerPiece * QuantityPieces, or the cash balance.
	PositionValue decimal.Decimal `json:"position_value"`
	// InstrumentCurrency is the instrument's native currency, informational only.
	InstrumentCurrency string `json:"instrument_currency"`
}

// Field names a Record field usable as a grouping key.
type Field string

const (
	// FieldName groups by display name.
	FieldName Field = "name"
	// FieldTicker groups by ticker.
	FieldTicker Field = "ticker"
	// FieldFIGI groups by instrument identifier.
	FieldFIGI Field = "figi"
)

// ParseField parses a grouping field. "identifier" is accepted as an alias of "figi".
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return FieldName, nil
	case "ticker":
		return FieldTicker, nil
	case "figi", "identifier":
		return FieldFIGI, nil
	default:
		return "", fmt.Errorf("unknown grouping field %q, must be one of: name, ticker, figi", s)
	}
}

// Value returns the value of field on the record.
func (r Record) Value(field Field) string {
	switch field {
	case FieldName:
		return r.Name
	case FieldTicker:
		return r.Ticker
	case FieldFIGI:
		return r.FIGI
	default:
		return ""
	}
}

// Columns returns the fixed column layout of record tables.
func Columns() []sheet.Column {
	return []sheet.Column{
		{Name: "account_id", Kind: sheet.KindText},
		{Name: "type", Kind: sheet.KindText},
		{Name: "figi", Kind: sheet.KindText},
		{Name: "ticker", Kind: sheet.KindText},
		{Name: "name", Kind: sheet.KindText},
		{Name: "lot", Kind: sheet.KindText},
		{Name: "quantity_lots", Kind: sheet.KindQuantity},
		{Name: "quantity_pcs", Kind: sheet.KindQuantity},
		{Name: "current_price_per_piece", Kind: sheet.KindMoney},
		{Name: "avg_price_per_piece", Kind: sheet.KindMoney},
		{Name: "price_per_lot", Kind: sheet.KindMoney},
		{Name: "position_value", Kind: sheet.KindMoney},
		{Name: "instrument_currency", Kind: sheet.KindText},
	}
}

// Row returns the raw cell values of the record in Columns order.
func (r Record) Row() []string {
	lot := ""
	if r.Lot > 0 {
		lot = strconv.FormatInt(r.Lot, 10)
	}
	return []string{
		r.AccountID,
		r.Type,
		r.FIGI,
		r.Ticker,
		r.Name,
		lot,
		nullString(r.QuantityLots),
		nullString(r.QuantityPieces),
		nullString(r.CurrentPricePerPiece),
		nullString(r.AvgPricePerPiece),
		nullString(r.PricePerLot),
		r.PositionValue.String(),
		r.InstrumentCurrency,
	}
}

// RecordsTable returns a table of the records. No records yields a header-only table.
func RecordsTable(records []Record) *sheet.Table {
	table := sheet.NewTable(Columns()...)
	for _, record := range records {
		table.Rows = append(table.Rows, record.Row())
	}
	return table
}

// SumPositionValue sums PositionValue over the records.
func SumPositionValue(records []Record) decimal.Decimal {
	sum := decimal.Zero
	for _, record := range records {
		sum = sum.Add(record.PositionValue)
	}
	return sum
}

// Valid wraps a decimal as a known value.
func Valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// *** PRIVATE ***

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
