// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package fallback calls an operation against an ordered list of alternate endpoints.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Do calls f with each endpoint in order until one succeeds.
//
// Every failure moves on to the next endpoint; there are no repeated attempts
// against the same endpoint. If pause is positive, Do waits that long between
// endpoints. If all endpoints fail, the returned error joins every endpoint's error.
// Context cancellation stops immediately.
func Do[T any](
	ctx context.Context,
	endpoints []string,
	pause time.Duration,
	f func(ctx context.Context, endpoint string) (T, error),
) (T, error) {
	var zero T
	if len(endpoints) == 0 {
		return zero, errors.New("no endpoints configured")
	}
	var errs []error
	for i, endpoint := range endpoints {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := f(ctx, endpoint)
		if err == nil {
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		errs = append(errs, fmt.Errorf("%s: %w", endpoint, err))
		// Don't wait after the last endpoint.
		if i == len(endpoints)-1 || pause <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(pause):
		}
	}
	return zero, fmt.Errorf("all %d endpoints failed: %w", len(endpoints), errors.Join(errs...))
}
