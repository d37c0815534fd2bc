// Copyright 2026 Peter Edge
//
// All rights reserved.

package tictlreport

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bufdev/tictl/internal/pkg/sheet"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/bufdev/tictl/internal/tictl/tictlsummary"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{
		accounts: []Account{{ID: "a1"}, {ID: "a2"}},
		positions: map[string][]tictlposition.RawPosition{
			"a1": {
				newRawPosition("F-ACME", "share", "10", "100", "95"),
				newRawPosition("F-OFZ", "bond", "3", "0", ""),
			},
			"a2": {
				newRawPosition("F-ACME", "share", "5", "106", ""),
				newRawPosition("F-OFZ", "bond", "2", "50", "49"),
				newRawPosition("", "", "1", "7", ""),
				newRawPosition("F-GONE", "etf", "4", "10", ""),
			},
		},
		cash: map[string]decimal.Decimal{
			"a1": decimal.RequireFromString("1000.5"),
			"a2": decimal.Zero,
		},
	}
	resolver := &fakeResolver{
		instruments: map[string]*tictlposition.Instrument{
			"F-ACME": {FIGI: "F-ACME", Ticker: "ACM", Name: "ACME", Type: "share", Currency: "USD", Lot: 1},
			"F-OFZ":  {FIGI: "F-OFZ", Ticker: "OFZ", Name: "OFZ 26238", Type: "bond", Currency: "RUB", Lot: 1},
		},
	}
	var sleeps []time.Duration
	reportAssembler := NewAssembler(slog.New(slog.DiscardHandler), provider, resolver, AssemblerWithCashName("Cash"))
	reportAssembler.(*assembler).sleep = func(_ context.Context, duration time.Duration) error {
		sleeps = append(sleeps, duration)
		return nil
	}
	report, err := reportAssembler.Assemble(context.Background())
	require.NoError(t, err)

	// Five lookups with a non-empty FIGI, a pause between each.
	require.Equal(t, []string{"F-ACME", "F-OFZ", "F-ACME", "F-OFZ", "F-GONE"}, resolver.figis)
	require.Equal(t, []time.Duration{DefaultPause, DefaultPause, DefaultPause, DefaultPause}, sleeps)

	require.Len(t, report.Positions, 7)
	require.True(t, tictlposition.IsCash(report.Positions[2]))
	require.Equal(t, "a1", report.Positions[2].AccountID)
	require.Equal(t, tictlposition.TypeSecurity, report.Positions[5].Type)
	require.Equal(t, "etf", report.Positions[6].Type)
	require.Equal(t, int64(1), report.Positions[6].Lot)

	require.True(t, report.AggregateEnabled)
	var names []string
	for _, record := range report.Aggregated {
		names = append(names, record.Name)
	}
	// The unnamed and unknown positions have empty names and are dropped.
	require.Equal(t, []string{"ACME", "Cash", "OFZ 26238"}, names)
	require.Equal(t, "102", report.Aggregated[0].CurrentPricePerPiece.Decimal.String())
	require.Equal(t, "50", report.Aggregated[2].CurrentPricePerPiece.Decimal.String())

	require.Len(t, report.Categories, len(tictlposition.AllCategories))
	require.Len(t, report.Categories[tictlposition.CategoryShares], 1)
	require.Len(t, report.Categories[tictlposition.CategoryBonds], 1)
	require.Empty(t, report.Categories[tictlposition.CategoryETFs])
	require.Len(t, report.Categories[tictlposition.CategoryMoney], 1)

	if diff := cmp.Diff(
		[][]string{
			{"Shares", "1530"},
			{"Bonds", "100"},
			{"ETFs", "40"},
			{"Other", "7"},
			{"Money", "1000.5"},
		},
		tictlsummary.NewTable(report.Summary).Rows,
	); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, tictlposition.SumPositionValue(report.Positions).String(), report.Total())
}

func TestAssembleEmpty(t *testing.T) {
	t.Parallel()
	reportAssembler := NewAssembler(
		slog.New(slog.DiscardHandler),
		&fakeProvider{},
		&fakeResolver{},
		AssemblerWithoutPortfolioAggregate(),
	)
	report, err := reportAssembler.Assemble(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Positions)
	require.False(t, report.AggregateEnabled)
	require.Equal(t, []tictlsummary.Row{{Label: tictlsummary.EmptyLabel, Value: decimal.Zero}}, report.Summary)

	renderer := newFakeRenderer()
	require.NoError(t, Render(context.Background(), renderer, report, DefaultSheetNames()))
	require.Equal(
		t,
		[]string{
			"Positions",
			"Positions_Shares",
			"Positions_Bonds",
			"Positions_ETFs",
			"Positions_Currencies",
			"Positions_Futures",
			"Positions_Other",
			"Positions_Money",
			"Positions_SummaryByType",
		},
		renderer.names,
	)
	for _, name := range renderer.names[:8] {
		require.Empty(t, renderer.tables[name].Rows, name)
		require.Len(t, renderer.tables[name].Columns, 13, name)
	}
	require.Equal(t, [][]string{{"EMPTY", "0"}}, renderer.tables["Positions_SummaryByType"].Rows)
}

func TestAssembleErrors(t *testing.T) {
	t.Parallel()
	upstream := errors.New("all 2 endpoints failed")
	_, err := NewAssembler(slog.New(slog.DiscardHandler), &fakeProvider{err: upstream}, &fakeResolver{}).Assemble(context.Background())
	require.ErrorIs(t, err, upstream)

	provider := &fakeProvider{
		accounts:  []Account{{ID: "a1"}},
		positions: map[string][]tictlposition.RawPosition{"a1": {newRawPosition("F", "share", "1", "1", "")}},
	}
	_, err = NewAssembler(slog.New(slog.DiscardHandler), provider, &fakeResolver{err: upstream}).Assemble(context.Background())
	require.ErrorIs(t, err, upstream)
}

func TestRenderMulti(t *testing.T) {
	t.Parallel()
	report := Build(
		slog.New(slog.DiscardHandler),
		[]tictlposition.Record{
			tictlposition.NewRecord("a", newRawPosition("F", "future", "2", "10", ""), &tictlposition.Instrument{Name: "Si", Type: "futures", Lot: 1}),
		},
		tictlposition.FieldTicker,
		true,
	)
	first := newFakeRenderer()
	second := newFakeRenderer()
	require.NoError(t, Render(context.Background(), MultiRenderer(first, second), report, DefaultSheetNames()))
	require.Equal(t, first.names, second.names)
	require.Len(t, first.names, 10)
	require.Equal(t, "Positions_Aggregated", first.names[1])
	// No ticker, so nothing to aggregate by.
	require.Empty(t, first.tables["Positions_Futures"].Rows)
	require.Equal(t, [][]string{{"Futures", "20"}}, first.tables["Positions_SummaryByType"].Rows)

	names := DefaultSheetNames()
	delete(names.Categories, tictlposition.CategoryMoney)
	require.Error(t, Render(context.Background(), first, report, names))
}

type fakeProvider struct {
	accounts  []Account
	positions map[string][]tictlposition.RawPosition
	cash      map[string]decimal.Decimal
	err       error
}

func (f *fakeProvider) ListAccounts(context.Context) ([]Account, error) {
	return f.accounts, f.err
}

func (f *fakeProvider) ListPositions(_ context.Context, accountID string) ([]tictlposition.RawPosition, error) {
	return f.positions[accountID], nil
}

func (f *fakeProvider) GetCash(_ context.Context, accountID string) (decimal.Decimal, error) {
	return f.cash[accountID], nil
}

type fakeResolver struct {
	instruments map[string]*tictlposition.Instrument
	err         error
	figis       []string
}

func (f *fakeResolver) Resolve(_ context.Context, figi string) (*tictlposition.Instrument, error) {
	f.figis = append(f.figis, figi)
	if f.err != nil {
		return nil, f.err
	}
	return f.instruments[figi], nil
}

type fakeRenderer struct {
	names  []string
	tables map[string]*sheet.Table
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{tables: make(map[string]*sheet.Table)}
}

func (f *fakeRenderer) WriteTable(_ context.Context, name string, table *sheet.Table) error {
	f.names = append(f.names, name)
	f.tables[name] = table
	return nil
}

func newRawPosition(figi string, instrumentType string, quantity string, currentPrice string, averagePrice string) tictlposition.RawPosition {
	raw := tictlposition.RawPosition{
		FIGI:           figi,
		InstrumentType: instrumentType,
		QuantityPieces: decimal.RequireFromString(quantity),
		CurrentPrice:   decimal.RequireFromString(currentPrice),
	}
	if averagePrice != "" {
		raw.AveragePrice = decimal.RequireFromString(averagePrice)
	}
	return raw
}
