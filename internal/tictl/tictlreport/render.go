// Copyright 2026 Peter Edge
//
// All rights reserved.

package tictlreport

import (
	"context"
	"errors"
	"fmt"

	"github.com/bufdev/tictl/internal/pkg/sheet"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/bufdev/tictl/internal/tictl/tictlsummary"
)

// Renderer writes named tables, fully replacing prior content.
type Renderer interface {
	WriteTable(ctx context.Context, name string, table *sheet.Table) error
}

// MultiRenderer returns a Renderer that writes to each renderer in order.
func MultiRenderer(renderers ...Renderer) Renderer {
	return multiRenderer(renderers)
}

// SheetNames are the destination names of report tables.
type SheetNames struct {
	Positions  string
	Aggregated string
	Summary    string
	Categories map[tictlposition.Category]string
}

// DefaultSheetNames returns the default destination names.
func DefaultSheetNames() SheetNames {
	return SheetNames{
		Positions:  "Positions",
		Aggregated: "Positions_Aggregated",
		Summary:    "Positions_SummaryByType",
		Categories: map[tictlposition.Category]string{
			tictlposition.CategoryShares:     "Positions_Shares",
			tictlposition.CategoryBonds:      "Positions_Bonds",
			tictlposition.CategoryETFs:       "Positions_ETFs",
			tictlposition.CategoryCurrencies: "Positions_Currencies",
			tictlposition.CategoryFutures:    "Positions_Futures",
			tictlposition.CategoryOther:      "Positions_Other",
			tictlposition.CategoryMoney:      "Positions_Money",
		},
	}
}

// NamedTable is a table with its destination name.
type NamedTable struct {
	Name  string
	Table *sheet.Table
}

// Tables returns the tables of the report in render order.
//
// The order is positions, the portfolio aggregate when enabled, one table
// per category, then the summary. Empty tables are included header-only.
func Tables(report *Report, names SheetNames) ([]NamedTable, error) {
	tables := []NamedTable{{Name: names.Positions, Table: tictlposition.RecordsTable(report.Positions)}}
	if report.AggregateEnabled {
		tables = append(tables, NamedTable{Name: names.Aggregated, Table: tictlposition.RecordsTable(report.Aggregated)})
	}
	for _, category := range tictlposition.AllCategories {
		name, ok := names.Categories[category]
		if !ok || name == "" {
			return nil, fmt.Errorf("no sheet name for category %s", category)
		}
		tables = append(tables, NamedTable{Name: name, Table: tictlposition.RecordsTable(report.Categories[category])})
	}
	tables = append(tables, NamedTable{Name: names.Summary, Table: tictlsummary.NewTable(report.Summary)})
	for _, table := range tables {
		if table.Name == "" {
			return nil, errors.New("empty sheet name")
		}
	}
	return tables, nil
}

// Render writes every table of the report to renderer.
func Render(ctx context.Context, renderer Renderer, report *Report, names SheetNames) error {
	tables, err := Tables(report, names)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := renderer.WriteTable(ctx, table.Name, table.Table); err != nil {
			return fmt.Errorf("rendering %s: %w", table.Name, err)
		}
	}
	return nil
}

// *** PRIVATE ***

type multiRenderer []Renderer

func (m multiRenderer) WriteTable(ctx context.Context, name string, table *sheet.Table) error {
	for _, renderer := range m {
		if err := renderer.WriteTable(ctx, name, table); err != nil {
			return err
		}
	}
	return nil
}
