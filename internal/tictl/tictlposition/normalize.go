// Copyright 2026 Peter Edge
//
// All rights reserved.

package tictlposition

import (
	"github.com/shopspring/decimal"
)

// Instrument is resolved instrument metadata.
type Instrument struct {
	FIGI     string `msgpack:"figi"`
	Ticker   string `msgpack:"ticker"`
	Name     string `msgpack:"name"`
	Type     string `msgpack:"type"`
	Currency string `msgpack:"currency"`
	Lot      int64  `msgpack:"lot"`
}

// RawPosition is a position as returned by the position provider.
//
// Prices are per piece in the reporting currency. A zero price means unknown.
type RawPosition struct {
	FIGI           string
	InstrumentType string
	QuantityPieces decimal.Decimal
	CurrentPrice   decimal.Decimal
	AveragePrice   decimal.Decimal
}

// NewRecord normalizes a raw position with its instrument metadata.
//
// A nil instrument means the metadata is absent: lot defaults to 1 and
// ticker, name and currency are blank. The type falls back to the raw
// position's type, then to TypeSecurity.
func NewRecord(accountID string, raw RawPosition, instrument *Instrument) Record {
	lot := int64(1)
	var ticker, name, currency, instrumentType string
	if instrument != nil {
		if instrument.Lot > 1 {
			lot = instrument.Lot
		}
		ticker = instrument.Ticker
		name = instrument.Name
		currency = instrument.Currency
		instrumentType = instrument.Type
	}
	if instrumentType == "" {
		instrumentType = raw.InstrumentType
	}
	if instrumentType == "" {
		instrumentType = TypeSecurity
	}
	lotDecimal := decimal.NewFromInt(lot)
	record := Record{
		AccountID:            accountID,
		Type:                 instrumentType,
		FIGI:                 raw.FIGI,
		Ticker:               ticker,
		Name:                 name,
		Lot:                  lot,
		QuantityLots:         Valid(raw.QuantityPieces.Div(lotDecimal)),
		QuantityPieces:       Valid(raw.QuantityPieces),
		CurrentPricePerPiece: Valid(raw.CurrentPrice),
		PricePerLot:          Valid(raw.CurrentPrice.Mul(lotDecimal)),
		PositionValue:        raw.CurrentPrice.Mul(raw.QuantityPieces),
		InstrumentCurrency:   currency,
	}
	if !raw.AveragePrice.IsZero() {
		record.AvgPricePerPiece = Valid(raw.AveragePrice)
	}
	return record
}

// NewCashRecord returns the cash row of an account.
//
// Cash is modeled as currency pieces priced at 1. The second return value is
// false when the balance is not positive, in which case no row is emitted.
func NewCashRecord(accountID string, amount decimal.Decimal, currency string, name string) (Record, bool) {
	if !amount.IsPositive() {
		return Record{}, false
	}
	one := decimal.NewFromInt(1)
	return Record{
		AccountID:            accountID,
		Type:                 TypeMoney,
		Ticker:               currency,
		Name:                 name,
		Lot:                  1,
		QuantityLots:         Valid(amount),
		QuantityPieces:       Valid(amount),
		CurrentPricePerPiece: Valid(one),
		PricePerLot:          Valid(one),
		PositionValue:        amount,
		InstrumentCurrency:   currency,
	}, true
}
