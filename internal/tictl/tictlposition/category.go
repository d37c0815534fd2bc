// Copyright 2026 Peter Edge
//
// All rights reserved.

package tictlposition

import "strings"

// Category is the display category of a position.
type Category string

const (
	// CategoryShares is stocks, depositary receipts and other share-like instruments.
	CategoryShares Category = "Shares"
	// CategoryBonds is bonds.
	CategoryBonds Category = "Bonds"
	// CategoryETFs is exchange-traded funds.
	CategoryETFs Category = "ETFs"
	// CategoryCurrencies is currency instruments held as securities.
	CategoryCurrencies Category = "Currencies"
	// CategoryFutures is futures contracts.
	CategoryFutures Category = "Futures"
	// CategoryMoney is cash balances.
	CategoryMoney Category = "Money"
	// CategoryOther is everything else.
	CategoryOther Category = "Other"
)

// TypeMoney is the raw type of cash rows.
const TypeMoney = "money"

// InstrumentCategories are the non-cash categories in display order.
var InstrumentCategories = []Category{
	CategoryShares,
	CategoryBonds,
	CategoryETFs,
	CategoryCurrencies,
	CategoryFutures,
	CategoryOther,
}

// AllCategories are the instrument categories followed by cash.
var AllCategories = append(append([]Category(nil), InstrumentCategories...), CategoryMoney)

// Classify maps a raw instrument type label to a category.
//
// Matching is case-insensitive. Rules apply in order: a label containing
// "share", then exact "bond", "etf", "currency", "future"/"futures", "money".
// Anything else, including the empty label, is CategoryOther.
func Classify(rawType string) Category {
	t := strings.ToLower(rawType)
	switch {
	case strings.Contains(t, "share"):
		return CategoryShares
	case t == "bond":
		return CategoryBonds
	case t == "etf":
		return CategoryETFs
	case t == "currency":
		return CategoryCurrencies
	case t == "future" || t == "futures":
		return CategoryFutures
	case t == TypeMoney:
		return CategoryMoney
	default:
		return CategoryOther
	}
}

// IsCash reports whether the record is a cash row.
//
// This is the only cash test; partitioning and the summary both go through
// Classify so the two can never disagree.
func IsCash(record Record) bool {
	return Classify(record.Type) == CategoryMoney
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, category := range AllCategories {
		if strings.EqualFold(string(category), s) {
			return category, true
		}
	}
	return "", false
}
