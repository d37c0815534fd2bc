// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlinstruments resolves instrument metadata by FIGI through a TTL cache.
package tictlinstruments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bufdev/tictl/internal/pkg/kvcache"
	"github.com/bufdev/tictl/internal/pkg/tinvest"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
)

// DefaultTTL is the default time instrument metadata stays cached.
const DefaultTTL = 6 * time.Hour

// Resolver resolves instrument metadata.
type Resolver interface {
	// Resolve returns the metadata of the instrument with the given FIGI.
	//
	// Returns nil and no error if figi is empty or the instrument is unknown.
	Resolve(ctx context.Context, figi string) (*tictlposition.Instrument, error)
}

// InstrumentGetter is the subset of tinvest.Client used by the resolver.
type InstrumentGetter interface {
	GetInstrumentByFIGI(ctx context.Context, figi string) (*tinvest.Instrument, error)
}

// ResolverOption is an option for a new Resolver.
type ResolverOption func(*resolver)

// ResolverWithTTL sets the cache TTL. Non-positive values are ignored.
func ResolverWithTTL(ttl time.Duration) ResolverOption {
	return func(resolver *resolver) {
		if ttl > 0 {
			resolver.ttl = ttl
		}
	}
}

// NewResolver returns a new Resolver backed by getter and cached in store.
func NewResolver(
	logger *slog.Logger,
	getter InstrumentGetter,
	store kvcache.Store,
	options ...ResolverOption,
) Resolver {
	resolver := &resolver{
		logger: logger,
		getter: getter,
		store:  store,
		ttl:    DefaultTTL,
	}
	for _, option := range options {
		option(resolver)
	}
	return resolver
}

// Normalize converts API metadata into an Instrument.
//
// The lot is at least 1, the type is lower-cased, the currency upper-cased,
// and the name falls back to the issuer name.
func Normalize(figi string, instrument *tinvest.Instrument) *tictlposition.Instrument {
	lot := instrument.Lot
	if lot < 1 {
		lot = 1
	}
	name := instrument.Name
	if name == "" {
		name = instrument.IssuerName
	}
	instrumentType := instrument.InstrumentType
	if instrumentType == "" {
		instrumentType = instrument.Type
	}
	currency := instrument.Currency
	if currency == "" {
		currency = instrument.NominalCurrency
	}
	return &tictlposition.Instrument{
		FIGI:     figi,
		Ticker:   instrument.Ticker,
		Name:     name,
		Type:     strings.ToLower(instrumentType),
		Currency: strings.ToUpper(currency),
		Lot:      lot,
	}
}

// *** PRIVATE ***

type resolver struct {
	logger *slog.Logger
	getter InstrumentGetter
	store  kvcache.Store
	ttl    time.Duration
}

func (r *resolver) Resolve(ctx context.Context, figi string) (*tictlposition.Instrument, error) {
	if figi == "" {
		return nil, nil
	}
	key := cacheKey(figi)
	cached, err := kvcache.GetValue[tictlposition.Instrument](ctx, r.store, key)
	if err == nil {
		r.logger.Debug("instrument cache hit", "figi", figi)
		return &cached, nil
	}
	if !errors.Is(err, kvcache.ErrNotFound) {
		// A broken cache entry is refetched.
		r.logger.Warn("reading instrument cache", "figi", figi, "error", err)
	}
	apiInstrument, err := r.getter.GetInstrumentByFIGI(ctx, figi)
	if err != nil {
		if errors.Is(err, tinvest.ErrNotFound) {
			r.logger.Warn("instrument metadata not found", "figi", figi)
			return nil, nil
		}
		return nil, fmt.Errorf("resolving instrument %s: %w", figi, err)
	}
	instrument := Normalize(figi, apiInstrument)
	if err := kvcache.PutValue(ctx, r.store, key, *instrument, r.ttl); err != nil {
		return nil, fmt.Errorf("caching instrument %s: %w", figi, err)
	}
	return instrument, nil
}

func cacheKey(figi string) string {
	return "inst:" + figi
}
