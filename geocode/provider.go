// Package geocode resolves address text to coordinates through an external
// provider, with a query cache, a two-tier fallback and a rate limit.
package geocode

import (
	"context"
	"errors"
)

// ErrProviderUnavailable is reported once per pass when every external
// lookup of that pass failed.
var ErrProviderUnavailable = errors.New("geocoding provider unavailable")

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Provider returns the best match for a free-text query. A query without a
// match yields found == false and a nil error.
type Provider interface {
	Lookup(ctx context.Context, query string) (p Point, found bool, err error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, query string) (Point, bool, error)

func (f ProviderFunc) Lookup(ctx context.Context, query string) (Point, bool, error) {
	return f(ctx, query)
}
