// Copyright 2026 Peter Edge
//
// All rights reserved.

package tictlposition

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		rawType string
		want    Category
	}{
		{"share", CategoryShares},
		{"Share", CategoryShares},
		{"sharesdr", CategoryShares},
		{"bond", CategoryBonds},
		{"BOND", CategoryBonds},
		{"bonds", CategoryOther},
		{"etf", CategoryETFs},
		{"currency", CategoryCurrencies},
		{"future", CategoryFutures},
		{"futures", CategoryFutures},
		{"money", CategoryMoney},
		{"Money", CategoryMoney},
		{"option", CategoryOther},
		{"", CategoryOther},
		{"null", CategoryOther},
		{" bond", CategoryOther},
	} {
		require.Equal(t, test.want, Classify(test.rawType), "rawType=%q", test.rawType)
	}
}

func TestIsCash(t *testing.T) {
	t.Parallel()
	cash, ok := NewCashRecord("a1", decimal.NewFromInt(10), "RUB", "Cash")
	require.True(t, ok)
	require.True(t, IsCash(cash))
	require.True(t, IsCash(Record{Type: "MONEY"}))
	require.False(t, IsCash(Record{Type: "share"}))
	require.False(t, IsCash(Record{}))
}

func TestParseField(t *testing.T) {
	t.Parallel()
	for input, want := range map[string]Field{
		"name":       FieldName,
		" Ticker ":   FieldTicker,
		"figi":       FieldFIGI,
		"identifier": FieldFIGI,
	} {
		got, err := ParseField(input)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseField("isin")
	require.Error(t, err)
	_, err = ParseField("")
	require.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	t.Parallel()
	category, ok := ParseCategory("etfs")
	require.True(t, ok)
	require.Equal(t, CategoryETFs, category)
	category, ok = ParseCategory("Money")
	require.True(t, ok)
	require.Equal(t, CategoryMoney, category)
	_, ok = ParseCategory("stocks")
	require.False(t, ok)
}

func TestNewRecord(t *testing.T) {
	t.Parallel()
	record := NewRecord(
		"2000111",
		RawPosition{
			FIGI:           "BBG004730N88",
			InstrumentType: "share",
			QuantityPieces: decimal.NewFromInt(30),
			CurrentPrice:   decimal.RequireFromString("290.5"),
			AveragePrice:   decimal.RequireFromString("250"),
		},
		&Instrument{
			FIGI:     "BBG004730N88",
			Ticker:   "SBER",
			Name:     "Sberbank",
			Type:     "share",
			Currency: "RUB",
			Lot:      10,
		},
	)
	require.Equal(
		t,
		[]string{"2000111", "share", "BBG004730N88", "SBER", "Sberbank", "10", "3", "30", "290.5", "250", "2905", "8715", "RUB"},
		record.Row(),
	)
}

func TestNewRecordAbsentMetadata(t *testing.T) {
	t.Parallel()
	record := NewRecord(
		"2000111",
		RawPosition{
			FIGI:           "TCS00A0ZZAC4",
			InstrumentType: "bond",
			QuantityPieces: decimal.NewFromInt(4),
		},
		nil,
	)
	require.Equal(t, int64(1), record.Lot)
	require.Equal(t, "bond", record.Type)
	require.Empty(t, record.Ticker)
	require.Empty(t, record.Name)
	require.Empty(t, record.InstrumentCurrency)
	require.False(t, record.AvgPricePerPiece.Valid)
	require.True(t, record.CurrentPricePerPiece.Valid)
	require.True(t, record.CurrentPricePerPiece.Decimal.IsZero())
	require.True(t, record.PositionValue.IsZero())
	require.Equal(t, "4", record.QuantityLots.Decimal.String())
	require.Equal(t, TypeSecurity, NewRecord("a", RawPosition{}, nil).Type)
}

func TestNewRecordNonPositiveLot(t *testing.T) {
	t.Parallel()
	for _, lot := range []int64{0, -3} {
		record := NewRecord(
			"a",
			RawPosition{QuantityPieces: decimal.NewFromInt(2)},
			&Instrument{Type: "etf", Lot: lot},
		)
		require.Equal(t, int64(1), record.Lot)
		require.Equal(t, "2", record.QuantityLots.Decimal.String())
	}
}

func TestNewCashRecord(t *testing.T) {
	t.Parallel()
	_, ok := NewCashRecord("a", decimal.Zero, "RUB", "Cash")
	require.False(t, ok)
	_, ok = NewCashRecord("a", decimal.NewFromInt(-5), "RUB", "Cash")
	require.False(t, ok)
	record, ok := NewCashRecord("a", decimal.RequireFromString("1234.56"), "RUB", "Cash")
	require.True(t, ok)
	require.Equal(
		t,
		[]string{"a", "money", "", "RUB", "Cash", "1", "1234.56", "1234.56", "1", "", "1", "1234.56", "RUB"},
		record.Row(),
	)
	require.Equal(t, CategoryMoney, Classify(record.Type))
}

func TestRecordsTable(t *testing.T) {
	t.Parallel()
	empty := RecordsTable(nil)
	require.Empty(t, empty.Rows)
	require.Equal(t, 13, len(empty.Header()))
	records := []Record{
		{AccountID: "a", Type: "share", Name: "X", Lot: 0, PositionValue: decimal.NewFromInt(3)},
		{AccountID: "b", Type: "bond", Name: "Y", Lot: 1, PositionValue: decimal.NewFromInt(4)},
	}
	table := RecordsTable(records)
	require.Len(t, table.Rows, 2)
	if diff := cmp.Diff(
		[]string{"a", "share", "", "", "X", "", "", "", "", "", "", "3", ""},
		table.Rows[0],
	); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "7", SumPositionValue(records).String())
}
