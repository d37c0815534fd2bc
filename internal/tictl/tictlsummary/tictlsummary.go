// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlsummary sums position values by category.
package tictlsummary

import (
	"github.com/bufdev/tictl/internal/pkg/sheet"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/shopspring/decimal"
)

// EmptyLabel is the label of the single row summarizing an empty portfolio.
const EmptyLabel = "EMPTY"

// Row is one summary line.
type Row struct {
	Label string          `json:"type"`
	Value decimal.Decimal `json:"position_value"`
}

// ValueFunc selects the monetary field to sum.
type ValueFunc func(tictlposition.Record) decimal.Decimal

// PositionValue sums Record.PositionValue.
func PositionValue(record tictlposition.Record) decimal.Decimal {
	return record.PositionValue
}

// Summarize sums value by the classified category of each record.
//
// Categories are emitted in tictlposition.InstrumentCategories order, only
// when at least one record contributed. Cash records are not part of the
// output; use AppendCash. No records yields a single EmptyLabel row of zero.
func Summarize(records []tictlposition.Record, value ValueFunc) []Row {
	if len(records) == 0 {
		return []Row{{Label: EmptyLabel, Value: decimal.Zero}}
	}
	sums := make(map[tictlposition.Category]decimal.Decimal)
	for _, record := range records {
		category := tictlposition.Classify(record.Type)
		sums[category] = sums[category].Add(value(record))
	}
	rows := make([]Row, 0, len(tictlposition.InstrumentCategories))
	for _, category := range tictlposition.InstrumentCategories {
		if sum, ok := sums[category]; ok {
			rows = append(rows, Row{Label: string(category), Value: sum})
		}
	}
	return rows
}

// AppendCash appends the total value of the cash records as a Money row
// when that total is positive.
func AppendCash(rows []Row, cashRecords []tictlposition.Record) []Row {
	total := tictlposition.SumPositionValue(cashRecords)
	if !total.IsPositive() {
		return rows
	}
	return append(rows, Row{Label: string(tictlposition.CategoryMoney), Value: total})
}

// Total sums every row.
func Total(rows []Row) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Value)
	}
	return total
}

// Columns returns the column layout of summary tables.
func Columns() []sheet.Column {
	return []sheet.Column{
		{Name: "type", Kind: sheet.KindText},
		{Name: "position_value", Kind: sheet.KindMoney},
	}
}

// NewTable returns a table of the rows.
func NewTable(rows []Row) *sheet.Table {
	table := sheet.NewTable(Columns()...)
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{row.Label, row.Value.String()})
	}
	return table
}
