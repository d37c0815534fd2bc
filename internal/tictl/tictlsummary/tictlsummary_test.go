// Copyright 2026 Peter Edge
//
// All rights reserved.

package tictlsummary

import (
	"testing"

	"github.com/bufdev/tictl/internal/tictl/tictlaggregate"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()
	rows := Summarize(nil, PositionValue)
	require.Equal(t, []Row{{Label: EmptyLabel, Value: decimal.Zero}}, rows)
	require.Equal(t, [][]string{{"type", "position_value"}, {"EMPTY", "0"}}, NewTable(rows).Records())
}

func TestSummarizeOrderAndTotals(t *testing.T) {
	t.Parallel()
	records := []tictlposition.Record{
		newTestRecord("option", "7"),
		newTestRecord("bond", "100"),
		newTestRecord("share", "10"),
		newTestRecord("etf", "20.5"),
		newTestRecord("futures", "1"),
		newTestRecord("share", "5"),
		newTestRecord("money", "1000"),
	}
	rows := Summarize(records, PositionValue)
	require.Equal(
		t,
		[][]string{
			{"Shares", "15"},
			{"Bonds", "100"},
			{"ETFs", "20.5"},
			{"Futures", "1"},
			{"Other", "7"},
		},
		NewTable(rows).Rows,
	)
	var cash []tictlposition.Record
	for _, record := range records {
		if tictlposition.IsCash(record) {
			cash = append(cash, record)
		}
	}
	rows = AppendCash(rows, tictlaggregate.Aggregate(cash, tictlposition.FieldName))
	require.Equal(t, "Money", rows[len(rows)-1].Label)
	require.Equal(t, "1000", rows[len(rows)-1].Value.String())
	require.True(t, tictlposition.SumPositionValue(records).Equal(Total(rows)))
}

func TestSummarizeOnlyCash(t *testing.T) {
	t.Parallel()
	records := []tictlposition.Record{newTestRecord("money", "50")}
	rows := Summarize(records, PositionValue)
	require.Empty(t, rows)
	rows = AppendCash(rows, records)
	require.Equal(t, [][]string{{"Money", "50"}}, NewTable(rows).Rows)
}

func TestAppendCashNotPositive(t *testing.T) {
	t.Parallel()
	rows := []Row{{Label: "Shares", Value: decimal.NewFromInt(1)}}
	require.Equal(t, rows, AppendCash(rows, nil))
	require.Equal(t, rows, AppendCash(rows, []tictlposition.Record{newTestRecord("money", "0")}))
}

func TestSummarizeCustomField(t *testing.T) {
	t.Parallel()
	records := []tictlposition.Record{newTestRecord("share", "10"), newTestRecord("share", "10")}
	rows := Summarize(records, func(tictlposition.Record) decimal.Decimal { return decimal.NewFromInt(1) })
	require.Equal(t, "2", rows[0].Value.String())
}

func newTestRecord(instrumentType string, value string) tictlposition.Record {
	return tictlposition.Record{
		AccountID:     "a",
		Type:          instrumentType,
		Name:          instrumentType,
		Lot:           1,
		PositionValue: decimal.RequireFromString(value),
	}
}
