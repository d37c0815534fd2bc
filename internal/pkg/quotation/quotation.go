// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package quotation converts T-Invest units/nano fixed-point values to and from decimals.
//
// The API encodes every number as an integer part (units, an int64 carried as a
// JSON string) and a fractional part in billionths (nano, int32). Both parts
// share the sign of the value, so -1.5 is units=-1, nano=-500000000.
package quotation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// nanoFactor is the number of nanos per unit.
const nanoFactor = 1_000_000_000

// nanoExp is the decimal exponent of one nano.
const nanoExp = -9

// ToDecimal converts units and nano to a decimal. An empty units string is zero.
func ToDecimal(units string, nano int32) (decimal.Decimal, error) {
	units = strings.TrimSpace(units)
	var unitsValue int64
	if units != "" {
		var err error
		unitsValue, err = strconv.ParseInt(units, 10, 64)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing units %q: %w", units, err)
		}
	}
	if nano <= -nanoFactor || nano >= nanoFactor {
		return decimal.Zero, fmt.Errorf("nano out of range: %d", nano)
	}
	// Validate sign consistency.
	if unitsValue > 0 && nano < 0 {
		return decimal.Zero, fmt.Errorf("sign mismatch: units=%d nano=%d", unitsValue, nano)
	}
	if unitsValue < 0 && nano > 0 {
		return decimal.Zero, fmt.Errorf("sign mismatch: units=%d nano=%d", unitsValue, nano)
	}
	return decimal.NewFromInt(unitsValue).Add(decimal.New(int64(nano), nanoExp)), nil
}

// FromDecimal splits a decimal into units and nano, truncating below one nano.
func FromDecimal(d decimal.Decimal) (string, int32) {
	truncated := d.Truncate(-nanoExp)
	units := truncated.IntPart()
	nano := truncated.Sub(decimal.NewFromInt(units)).Shift(-nanoExp).IntPart()
	return strconv.FormatInt(units, 10), int32(nano)
}
