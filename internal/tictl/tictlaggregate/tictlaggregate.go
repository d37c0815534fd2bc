// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlaggregate merges position records that share a grouping key.
package tictlaggregate

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/shopspring/decimal"
)

// AggregateOption is an option for Aggregate.
type AggregateOption func(*aggregateOptions)

// AggregateWithLogger logs groups whose merged rows disagree on type or lot.
func AggregateWithLogger(logger *slog.Logger) AggregateOption {
	return func(aggregateOptions *aggregateOptions) {
		aggregateOptions.logger = logger
	}
}

// Aggregate merges records by the trimmed value of field.
//
// Records with an empty key are dropped. Each output record has AccountID
// tictlposition.AllAccounts, summed quantities and values, and quantity-weighted
// prices computed only over rows with a positive price and a positive quantity.
// Type, lot, ticker and currency are kept only when every merged row agrees,
// a blank value counting as a value of its own.
// The grouping field is set to the key, so FIGI grouping keeps figi = key.
// Output is sorted by position value, descending, ties in encounter order.
//
// Empty input is returned unchanged.
func Aggregate(records []tictlposition.Record, field tictlposition.Field, options ...AggregateOption) []tictlposition.Record {
	if len(records) == 0 {
		return records
	}
	aggregateOptions := &aggregateOptions{}
	for _, option := range options {
		option(aggregateOptions)
	}
	var keys []string
	keyToGroup := make(map[string]*group)
	for _, record := range records {
		key := strings.TrimSpace(record.Value(field))
		if key == "" {
			continue
		}
		g, ok := keyToGroup[key]
		if !ok {
			g = newGroup()
			keyToGroup[key] = g
			keys = append(keys, key)
		}
		g.add(record)
	}
	aggregated := make([]tictlposition.Record, 0, len(keys))
	for _, key := range keys {
		g := keyToGroup[key]
		if aggregateOptions.logger != nil && (g.types.Conflict() || g.lots.Conflict()) {
			aggregateOptions.logger.Warn(
				"aggregated rows disagree",
				"key", key,
				"type_conflict", g.types.Conflict(),
				"lot_conflict", g.lots.Conflict(),
			)
		}
		aggregated = append(aggregated, g.record(key, field))
	}
	sort.SliceStable(aggregated, func(i int, j int) bool {
		return aggregated[i].PositionValue.GreaterThan(aggregated[j].PositionValue)
	})
	return aggregated
}

// *** PRIVATE ***

type aggregateOptions struct {
	logger *slog.Logger
}

type group struct {
	types      Common[string]
	lots       Common[int64]
	tickers    Common[string]
	names      Common[string]
	currencies Common[string]

	quantityLots   decimal.Decimal
	quantityPieces decimal.Decimal
	positionValue  decimal.Decimal
	current        weighted
	average        weighted
}

func newGroup() *group {
	return &group{
		quantityLots:   decimal.Zero,
		quantityPieces: decimal.Zero,
		positionValue:  decimal.Zero,
		current:        newWeighted(),
		average:        newWeighted(),
	}
}

func (g *group) add(record tictlposition.Record) {
	g.types.Add(record.Type)
	g.lots.Add(record.Lot)
	g.tickers.Add(record.Ticker)
	g.names.Add(record.Name)
	g.currencies.Add(record.InstrumentCurrency)
	quantityPieces := valueOrZero(record.QuantityPieces)
	g.quantityLots = g.quantityLots.Add(valueOrZero(record.QuantityLots))
	g.quantityPieces = g.quantityPieces.Add(quantityPieces)
	g.positionValue = g.positionValue.Add(record.PositionValue)
	g.current.add(valueOrZero(record.CurrentPricePerPiece), quantityPieces)
	g.average.add(valueOrZero(record.AvgPricePerPiece), quantityPieces)
}

func (g *group) record(key string, field tictlposition.Field) tictlposition.Record {
	record := tictlposition.Record{
		AccountID:          tictlposition.AllAccounts,
		Type:               g.types.OrZero(),
		Ticker:             g.tickers.OrZero(),
		Name:               g.names.OrZero(),
		Lot:                g.lots.OrZero(),
		QuantityLots:       tictlposition.Valid(g.quantityLots),
		QuantityPieces:     tictlposition.Valid(g.quantityPieces),
		PositionValue:      g.positionValue,
		InstrumentCurrency: g.currencies.OrZero(),
	}
	if record.Type == "" {
		record.Type = tictlposition.TypeSecurity
	}
	switch field {
	case tictlposition.FieldName:
		record.Name = key
	case tictlposition.FieldTicker:
		record.Ticker = key
	case tictlposition.FieldFIGI:
		record.FIGI = key
	}
	if record.Name == "" {
		record.Name = key
	}
	currentPrice := g.current.mean()
	record.CurrentPricePerPiece = tictlposition.Valid(currentPrice)
	if averagePrice := g.average.mean(); !averagePrice.IsZero() {
		record.AvgPricePerPiece = tictlposition.Valid(averagePrice)
	}
	if record.Lot > 0 && !currentPrice.IsZero() {
		record.PricePerLot = tictlposition.Valid(currentPrice.Mul(decimal.NewFromInt(record.Lot)))
	}
	return record
}

// weighted is a quantity-weighted mean over positive prices and quantities.
type weighted struct {
	sum      decimal.Decimal
	quantity decimal.Decimal
}

func newWeighted() weighted {
	return weighted{
		sum:      decimal.Zero,
		quantity: decimal.Zero,
	}
}

func (w *weighted) add(price decimal.Decimal, quantity decimal.Decimal) {
	if !price.IsPositive() || !quantity.IsPositive() {
		return
	}
	w.sum = w.sum.Add(price.Mul(quantity))
	w.quantity = w.quantity.Add(quantity)
}

func (w *weighted) mean() decimal.Decimal {
	if !w.quantity.IsPositive() {
		return decimal.Zero
	}
	return w.sum.Div(w.quantity)
}

func valueOrZero(value decimal.NullDecimal) decimal.Decimal {
	if !value.Valid {
		return decimal.Zero
	}
	return value.Decimal
}
