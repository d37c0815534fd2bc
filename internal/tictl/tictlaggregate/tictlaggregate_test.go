// Copyright 2026 Peter Edge
//
// All rights reserved.

package tictlaggregate

import (
	"testing"

	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAggregateWeightedPrice(t *testing.T) {
	t.Parallel()
	aggregated := Aggregate(
		[]tictlposition.Record{
			newTestRecord("a1", "share", "ACME", "ACM", 1, "10", "100", "90"),
			newTestRecord("a2", "share", "ACME", "ACM", 1, "5", "106", ""),
		},
		tictlposition.FieldName,
	)
	require.Len(t, aggregated, 1)
	if diff := cmp.Diff(
		[]string{"ALL", "share", "", "ACM", "ACME", "1", "15", "15", "102", "90", "102", "1530", "RUB"},
		aggregated[0].Row(),
	); diff != "" {
		t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateZeroPriceExcluded(t *testing.T) {
	t.Parallel()
	aggregated := Aggregate(
		[]tictlposition.Record{
			newTestRecord("a1", "bond", "OFZ", "", 1, "3", "0", ""),
			newTestRecord("a2", "bond", "OFZ", "", 1, "2", "50", "50"),
		},
		tictlposition.FieldName,
	)
	require.Len(t, aggregated, 1)
	require.Equal(t, "50", aggregated[0].CurrentPricePerPiece.Decimal.String())
	require.Equal(t, "50", aggregated[0].AvgPricePerPiece.Decimal.String())
	require.Equal(t, "5", aggregated[0].QuantityPieces.Decimal.String())
	require.Equal(t, "100", aggregated[0].PositionValue.String())
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()
	require.Empty(t, Aggregate(nil, tictlposition.FieldName))
	require.Empty(t, tictlposition.RecordsTable(Aggregate(nil, tictlposition.FieldName)).Rows)
}

func TestAggregateLotMismatch(t *testing.T) {
	t.Parallel()
	aggregated := Aggregate(
		[]tictlposition.Record{
			newTestRecord("a1", "share", "X", "X", 1, "10", "10", ""),
			newTestRecord("a2", "share", "X", "X", 10, "20", "12", ""),
		},
		tictlposition.FieldName,
	)
	require.Len(t, aggregated, 1)
	require.Equal(t, int64(0), aggregated[0].Lot)
	require.False(t, aggregated[0].PricePerLot.Valid)
	row := aggregated[0].Row()
	require.Equal(t, "", row[5])
	require.Equal(t, "", row[10])
}

func TestAggregateTypeFallback(t *testing.T) {
	t.Parallel()
	aggregated := Aggregate(
		[]tictlposition.Record{
			newTestRecord("a1", "share", "X", "X1", 1, "1", "10", ""),
			newTestRecord("a2", "etf", "X", "X2", 1, "1", "10", ""),
			newTestRecord("a2", "", "Y", "", 1, "1", "1", ""),
		},
		tictlposition.FieldName,
	)
	require.Len(t, aggregated, 2)
	require.Equal(t, tictlposition.TypeSecurity, aggregated[0].Type)
	require.Empty(t, aggregated[0].Ticker)
	require.Equal(t, tictlposition.TypeSecurity, aggregated[1].Type)
}

func TestAggregateBlankKeys(t *testing.T) {
	t.Parallel()
	withBlank := []tictlposition.Record{
		newTestRecord("a1", "share", "A", "", 1, "2", "10", ""),
		newTestRecord("a1", "share", "   ", "", 1, "1000", "1000", ""),
		newTestRecord("a1", "share", "", "", 1, "7", "7", ""),
		newTestRecord("a2", "share", " A ", "", 1, "3", "10", ""),
	}
	aggregated := Aggregate(withBlank, tictlposition.FieldName)
	require.Len(t, aggregated, 1)
	require.Equal(t, "A", aggregated[0].Name)
	require.Equal(t, "5", aggregated[0].QuantityPieces.Decimal.String())
	require.Equal(t, "50", aggregated[0].PositionValue.String())
}

func TestAggregateSortStable(t *testing.T) {
	t.Parallel()
	aggregated := Aggregate(
		[]tictlposition.Record{
			newTestRecord("a1", "share", "B", "", 1, "1", "5", ""),
			newTestRecord("a1", "share", "C", "", 1, "1", "50", ""),
			newTestRecord("a1", "share", "A", "", 1, "1", "5", ""),
			newTestRecord("a1", "share", "D", "", 1, "1", "500", ""),
		},
		tictlposition.FieldName,
	)
	var names []string
	for _, record := range aggregated {
		names = append(names, record.Name)
	}
	require.Equal(t, []string{"D", "C", "B", "A"}, names)
}

func TestAggregateByTickerAndFIGI(t *testing.T) {
	t.Parallel()
	records := []tictlposition.Record{
		newTestRecord("a1", "share", "Sber", "SBER", 10, "10", "300", ""),
		newTestRecord("a2", "share", "Sberbank", "SBER", 10, "20", "303", ""),
	}
	records[0].FIGI = "BBG004730N88"
	records[1].FIGI = "BBG004730N88"
	byTicker := Aggregate(records, tictlposition.FieldTicker)
	require.Len(t, byTicker, 1)
	require.Equal(t, "SBER", byTicker[0].Ticker)
	require.Equal(t, "SBER", byTicker[0].Name)
	require.Empty(t, byTicker[0].FIGI)
	require.Equal(t, "302", byTicker[0].CurrentPricePerPiece.Decimal.String())
	require.Equal(t, "3020", byTicker[0].PricePerLot.Decimal.String())
	require.Equal(t, "3", byTicker[0].QuantityLots.Decimal.String())
	byFIGI := Aggregate(records, tictlposition.FieldFIGI)
	require.Len(t, byFIGI, 1)
	require.Equal(t, "BBG004730N88", byFIGI[0].FIGI)
}

func TestAggregateIdempotent(t *testing.T) {
	t.Parallel()
	records := []tictlposition.Record{
		newTestRecord("a1", "share", "ACME", "ACM", 1, "10", "100", "91.5"),
		newTestRecord("a2", "share", "ACME", "ACM", 1, "5", "106", "97"),
		newTestRecord("a1", "bond", "OFZ", "", 1, "3", "0", ""),
		newTestRecord("a2", "bond", "OFZ", "", 10, "7", "999.3", ""),
		newTestRecord("a1", "etf", "Gold", "GLD", 1, "3", "1", ""),
		newTestRecord("a2", "share", "Gold", "GLD", 1, "3", "2", ""),
	}
	for _, field := range []tictlposition.Field{
		tictlposition.FieldName,
		tictlposition.FieldTicker,
		tictlposition.FieldFIGI,
	} {
		for i := range records {
			records[i].FIGI = "F-" + records[i].Name
		}
		once := Aggregate(records, field)
		twice := Aggregate(once, field)
		require.Equal(t, rows(once), rows(twice), "field=%s", field)
	}
}

func TestAggregateSumsAndBounds(t *testing.T) {
	t.Parallel()
	records := []tictlposition.Record{
		newTestRecord("a1", "share", "Z", "", 1, "3", "17.31", "15"),
		newTestRecord("a2", "share", "Z", "", 1, "11", "17.02", "16.2"),
		newTestRecord("a3", "share", "Z", "", 1, "0", "99", "99"),
		newTestRecord("a4", "share", "Z", "", 1, "7", "16.5", "0"),
	}
	aggregated := Aggregate(records, tictlposition.FieldName)
	require.Len(t, aggregated, 1)
	sum := decimal.Zero
	minPrice := decimal.RequireFromString("16.5")
	maxPrice := decimal.RequireFromString("17.31")
	for _, record := range records {
		sum = sum.Add(record.QuantityPieces.Decimal)
	}
	require.True(t, sum.Equal(aggregated[0].QuantityPieces.Decimal))
	current := aggregated[0].CurrentPricePerPiece.Decimal
	require.True(t, current.GreaterThanOrEqual(minPrice), current.String())
	require.True(t, current.LessThanOrEqual(maxPrice), current.String())
	average := aggregated[0].AvgPricePerPiece.Decimal
	require.True(t, average.GreaterThanOrEqual(decimal.NewFromInt(15)), average.String())
	require.True(t, average.LessThanOrEqual(decimal.RequireFromString("16.2")), average.String())
}

func TestAggregateBlankAttributesDisagree(t *testing.T) {
	t.Parallel()
	withTicker := newTestRecord("a1", "share", "ACME", "ACM", 1, "10", "100", "")
	withoutTicker := newTestRecord("a2", "share", "ACME", "", 1, "5", "100", "")
	withoutTicker.InstrumentCurrency = ""
	aggregated := Aggregate([]tictlposition.Record{withTicker, withoutTicker}, tictlposition.FieldName)
	require.Len(t, aggregated, 1)
	require.Empty(t, aggregated[0].Ticker)
	require.Empty(t, aggregated[0].InstrumentCurrency)
	require.Equal(t, "ACME", aggregated[0].Name)
	require.Equal(t, "share", aggregated[0].Type)

	single := Aggregate([]tictlposition.Record{withoutTicker}, tictlposition.FieldName)
	require.Len(t, single, 1)
	require.Empty(t, single[0].Ticker)
	require.Equal(t, rows(single), rows(Aggregate(single, tictlposition.FieldName)))
}

func TestCommon(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		values       []string
		wantValue    string
		wantOK       bool
		wantConflict bool
	}{
		{name: "none"},
		{name: "single_blank", values: []string{""}, wantOK: true},
		{name: "same", values: []string{"x", "x"}, wantValue: "x", wantOK: true},
		{name: "blank_then_value", values: []string{"", "x"}, wantConflict: true},
		{name: "value_then_blank", values: []string{"x", ""}, wantConflict: true},
		{name: "distinct", values: []string{"x", "y", "x"}, wantConflict: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var common Common[string]
			for _, value := range test.values {
				common.Add(value)
			}
			value, ok := common.Get()
			require.Equal(t, test.wantValue, value)
			require.Equal(t, test.wantOK, ok)
			require.Equal(t, test.wantConflict, common.Conflict())
			require.Equal(t, test.wantValue, common.OrZero())
		})
	}
	var lots Common[int64]
	lots.Add(1)
	lots.Add(0)
	require.True(t, lots.Conflict())
	require.Equal(t, int64(0), lots.OrZero())
}

func newTestRecord(
	accountID string,
	instrumentType string,
	name string,
	ticker string,
	lot int64,
	quantity string,
	currentPrice string,
	averagePrice string,
) tictlposition.Record {
	raw := tictlposition.RawPosition{
		InstrumentType: instrumentType,
		QuantityPieces: decimal.RequireFromString(quantity),
		CurrentPrice:   decimal.RequireFromString(currentPrice),
	}
	if averagePrice != "" {
		raw.AveragePrice = decimal.RequireFromString(averagePrice)
	}
	return tictlposition.NewRecord(
		accountID,
		raw,
		&tictlposition.Instrument{
			Ticker:   ticker,
			Name:     name,
			Type:     instrumentType,
			Currency: "RUB",
			Lot:      lot,
		},
	)
}

func rows(records []tictlposition.Record) [][]string {
	result := make([][]string, len(records))
	for i, record := range records {
		result[i] = record.Row()
	}
	return result
}
