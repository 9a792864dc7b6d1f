package geocode

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ctopbusca/ctop-busca/address"
	"github.com/ctopbusca/ctop-busca/logger"

	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

const defaultCountry = "Brasil"

// Options tunes a Resolver.
type Options struct {
	// Interval is the minimum delay between two provider calls.
	Interval time.Duration
	// Country is appended to every query.
	Country string
}

// PassStats describes one Resolve call.
type PassStats struct {
	Skipped   bool `json:"skipped"`
	Lookups   int  `json:"lookups"`
	CacheHits int  `json:"cacheHits"`
	Fallbacks int  `json:"fallbacks"`
	Errors    int  `json:"errors"`
	Resolved  int  `json:"resolved"`
	NotFound  int  `json:"notFound"`
}

// Totals are the counters accumulated since the Resolver was created.
type Totals struct {
	Passes    int64 `json:"passes"`
	Lookups   int64 `json:"lookups"`
	CacheHits int64 `json:"cacheHits"`
	Fallbacks int64 `json:"fallbacks"`
	Errors    int64 `json:"errors"`
}

// Result is the outcome of Resolve. Warning is set, once, when the provider
// failed every lookup of the pass.
type Result struct {
	Records []address.Record
	Stats   PassStats
	Warning error
}

// Resolver attaches coordinates to address records. Passes are serialized
// and provider calls are spaced by at least Options.Interval.
type Resolver struct {
	provider Provider
	cache    Cache
	limiter  *rate.Limiter
	country  string

	mu sync.Mutex

	passes    atomic.Int64
	lookups   atomic.Int64
	cacheHits atomic.Int64
	fallbacks atomic.Int64
	errors    atomic.Int64
}

// NewResolver creates a Resolver. A nil cache keeps answers in memory only.
func NewResolver(p Provider, c Cache, opts Options) *Resolver {
	if c == nil {
		c = NewMemoryCache()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Country == "" {
		opts.Country = defaultCountry
	}
	return &Resolver{
		provider: p,
		cache:    c,
		limiter:  rate.NewLimiter(rate.Every(opts.Interval), 1),
		country:  opts.Country,
	}
}

// Totals returns the accumulated counters.
func (r *Resolver) Totals() Totals {
	return Totals{
		Passes:    r.passes.Load(),
		Lookups:   r.lookups.Load(),
		CacheHits: r.cacheHits.Load(),
		Fallbacks: r.fallbacks.Load(),
		Errors:    r.errors.Load(),
	}
}

// Resolve returns a copy of records with coordinates attached, in the
// original order. Records that already went through geocoding are kept as
// they are; when that is true for all of them no lookup happens at all.
//
// A failed row never aborts the pass. Rows whose lookup errored keep no
// coordinates and stay unresolved so a later pass retries them. When ctx is
// cancelled the partial result is returned with ctx's error.
func (r *Resolver) Resolve(ctx context.Context, records []address.Record, city string) (Result, error) {
	out := make([]address.Record, len(records))
	copy(out, records)
	res := Result{Records: out}

	if allResolved(out) {
		res.Stats.Skipped = true
		return res, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.passes.Inc()

	for i := range out {
		if out[i].Status != address.Unresolved {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.resolveOne(ctx, &out[i], city, &res.Stats); err != nil {
			return res, err
		}
	}

	if res.Stats.Lookups > 0 && res.Stats.Errors == res.Stats.Lookups {
		res.Warning = ErrProviderUnavailable
		logger.Warningf("geocoding: all %d lookups failed", res.Stats.Lookups)
	}
	return res, nil
}

func allResolved(records []address.Record) bool {
	for _, rec := range records {
		if rec.Status == address.Unresolved {
			return false
		}
	}
	return true
}

// resolveOne only returns an error when ctx is done.
func (r *Resolver) resolveOne(ctx context.Context, rec *address.Record, city string, stats *PassStats) error {
	if strings.TrimSpace(rec.Address()) == "" {
		rec.MarkNotFound()
		stats.NotFound++
		return nil
	}

	queries := []string{
		PrimaryQuery(*rec, city, r.country),
		FallbackQuery(*rec, city, r.country),
	}
	if queries[0] == queries[1] {
		queries = queries[:1]
	}

	for i, q := range queries {
		if i > 0 {
			stats.Fallbacks++
			r.fallbacks.Inc()
		}
		answer, err := r.lookup(ctx, q, stats)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Debugf("geocoding row %d (%q): %v", rec.Row, q, err)
			return nil
		}
		if answer.Found {
			rec.SetCoordinates(answer.Point.Lat, answer.Point.Lon)
			stats.Resolved++
			return nil
		}
	}

	rec.MarkNotFound()
	stats.NotFound++
	return nil
}

// lookup answers from the cache when possible, otherwise waits for the
// limiter and asks the provider.
func (r *Resolver) lookup(ctx context.Context, query string, stats *PassStats) (Answer, error) {
	answer, ok, err := r.cache.Get(query)
	if err != nil {
		logger.Warning("geocode cache read failed:", err)
	} else if ok {
		stats.CacheHits++
		r.cacheHits.Inc()
		return answer, nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return Answer{}, err
	}
	stats.Lookups++
	r.lookups.Inc()

	p, found, err := r.provider.Lookup(ctx, query)
	if err != nil {
		stats.Errors++
		r.errors.Inc()
		return Answer{}, err
	}

	answer = Answer{Found: found, Point: p}
	if err := r.cache.Put(query, answer); err != nil {
		logger.Warning("geocode cache write failed:", err)
	}
	return answer, nil
}

// PrimaryQuery is "{Address}, {Neighborhood}, {City}, {AccessPoint}, {Country}"
// with empty parts left out.
func PrimaryQuery(rec address.Record, city, country string) string {
	return joinQuery(rec.Address(), rec.Neighborhood(), cityOf(rec, city), rec.AccessPoint(), country)
}

// FallbackQuery is "{Address}, {City}, {Country}".
func FallbackQuery(rec address.Record, city, country string) string {
	return joinQuery(rec.Address(), cityOf(rec, city), country)
}

func cityOf(rec address.Record, city string) string {
	if city != "" {
		return city
	}
	return rec.City()
}

func joinQuery(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
