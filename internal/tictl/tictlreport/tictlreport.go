// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlreport assembles the position report and renders it to sheets.
//
// A report is built from scratch on every run: positions of every open
// account are normalized into canonical records, aggregated across the whole
// portfolio, partitioned into categories and aggregated per category, and
// summarized by category with the cash total appended.
package tictlreport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bufdev/tictl/internal/tictl/tictlaggregate"
	"github.com/bufdev/tictl/internal/tictl/tictlinstruments"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/bufdev/tictl/internal/tictl/tictlsummary"
)

const (
	// DefaultCurrency is the default reporting currency.
	DefaultCurrency = "RUB"
	// DefaultCashName is the default display name of cash rows.
	DefaultCashName = "Деньги (RUB)"
	// DefaultPause is the default pause between instrument lookups.
	DefaultPause = 30 * time.Millisecond
)

// Report is an assembled position report.
type Report struct {
	// Positions are the canonical records of every open account, cash last per account.
	Positions []tictlposition.Record
	// Aggregated is the whole-portfolio aggregate. Nil when disabled.
	Aggregated []tictlposition.Record
	// AggregateEnabled is whether Aggregated was computed.
	AggregateEnabled bool
	// Categories are the per-category aggregates, keyed by every category.
	Categories map[tictlposition.Category][]tictlposition.Record
	// Summary is the category summary with the cash total appended.
	Summary []tictlsummary.Row
}

// Total returns the grand total of the summary.
func (r *Report) Total() string {
	return tictlsummary.Total(r.Summary).String()
}

// Assembler assembles reports.
type Assembler interface {
	Assemble(ctx context.Context) (*Report, error)
}

// AssemblerOption is an option for a new Assembler.
type AssemblerOption func(*assembler)

// AssemblerWithGroupField sets the field records are aggregated by. The default is name.
func AssemblerWithGroupField(field tictlposition.Field) AssemblerOption {
	return func(assembler *assembler) {
		assembler.groupField = field
	}
}

// AssemblerWithoutPortfolioAggregate skips the whole-portfolio aggregate.
func AssemblerWithoutPortfolioAggregate() AssemblerOption {
	return func(assembler *assembler) {
		assembler.skipAggregate = true
	}
}

// AssemblerWithCurrency sets the reporting currency of cash rows.
func AssemblerWithCurrency(currency string) AssemblerOption {
	return func(assembler *assembler) {
		assembler.currency = currency
	}
}

// AssemblerWithCashName sets the display name of cash rows.
func AssemblerWithCashName(cashName string) AssemblerOption {
	return func(assembler *assembler) {
		assembler.cashName = cashName
	}
}

// AssemblerWithPause sets the pause between instrument lookups.
func AssemblerWithPause(pause time.Duration) AssemblerOption {
	return func(assembler *assembler) {
		assembler.pause = pause
	}
}

// NewAssembler returns a new Assembler.
func NewAssembler(
	logger *slog.Logger,
	provider Provider,
	resolver tictlinstruments.Resolver,
	options ...AssemblerOption,
) Assembler {
	assembler := &assembler{
		logger:     logger,
		provider:   provider,
		resolver:   resolver,
		groupField: tictlposition.FieldName,
		currency:   DefaultCurrency,
		cashName:   DefaultCashName,
		pause:      DefaultPause,
		sleep:      sleep,
	}
	for _, option := range options {
		option(assembler)
	}
	return assembler
}

// Build builds a report from canonical records.
//
// Empty input yields empty aggregates and the single-row empty summary.
func Build(logger *slog.Logger, records []tictlposition.Record, groupField tictlposition.Field, withAggregate bool) *Report {
	aggregateOption := tictlaggregate.AggregateWithLogger(logger)
	report := &Report{
		Positions:        records,
		AggregateEnabled: withAggregate,
		Categories:       make(map[tictlposition.Category][]tictlposition.Record, len(tictlposition.AllCategories)),
	}
	if withAggregate {
		report.Aggregated = tictlaggregate.Aggregate(records, groupField, aggregateOption)
	}
	partition := make(map[tictlposition.Category][]tictlposition.Record, len(tictlposition.AllCategories))
	for _, record := range records {
		category := tictlposition.Classify(record.Type)
		partition[category] = append(partition[category], record)
	}
	for _, category := range tictlposition.AllCategories {
		report.Categories[category] = tictlaggregate.Aggregate(partition[category], groupField, aggregateOption)
	}
	report.Summary = tictlsummary.AppendCash(
		tictlsummary.Summarize(records, tictlsummary.PositionValue),
		report.Categories[tictlposition.CategoryMoney],
	)
	return report
}

// *** PRIVATE ***

type assembler struct {
	logger        *slog.Logger
	provider      Provider
	resolver      tictlinstruments.Resolver
	groupField    tictlposition.Field
	skipAggregate bool
	currency      string
	cashName      string
	pause         time.Duration
	sleep         func(context.Context, time.Duration) error
}

func (a *assembler) Assemble(ctx context.Context) (*Report, error) {
	accounts, err := a.provider.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	var records []tictlposition.Record
	lookups := 0
	for _, account := range accounts {
		positions, err := a.provider.ListPositions(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("listing positions of account %s: %w", account.ID, err)
		}
		for _, position := range positions {
			var instrument *tictlposition.Instrument
			if position.FIGI != "" {
				if lookups > 0 && a.pause > 0 {
					if err := a.sleep(ctx, a.pause); err != nil {
						return nil, err
					}
				}
				lookups++
				instrument, err = a.resolver.Resolve(ctx, position.FIGI)
				if err != nil {
					return nil, err
				}
			}
			records = append(records, tictlposition.NewRecord(account.ID, position, instrument))
		}
		cash, err := a.provider.GetCash(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("getting cash of account %s: %w", account.ID, err)
		}
		if cashRecord, ok := tictlposition.NewCashRecord(account.ID, cash, a.currency, a.cashName); ok {
			records = append(records, cashRecord)
		}
		a.logger.Debug("account assembled", "account_id", account.ID, "positions", len(positions))
	}
	return Build(a.logger, records, a.groupField, !a.skipAggregate), nil
}

func sleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
