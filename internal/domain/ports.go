package domain

import (
	"context"
	"errors"
)

// ErrNotFound signals a 4xx not-found from the upstream catalog.
var ErrNotFound = errors.New("stays: not found")

// PropertyAPI is the upstream catalog boundary. Both calls are single-shot:
// no retries, no caching, no pagination. FetchPrices returns quotes for the
// whole location in one call per (location, currency) pair — never one call
// per property.
type PropertyAPI interface {
	FetchProperties(ctx context.Context, location string) ([]Property, error)
	FetchPrices(ctx context.Context, location string, currency Currency) ([]PropertyPrice, error)
}

// PreferenceStore persists the single user preference, the display currency.
// Load reports ok=false when nothing has been stored yet.
type PreferenceStore interface {
	Load(ctx context.Context) (currency string, ok bool, err error)
	Save(ctx context.Context, currency string) error
}
