package geocode

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ctopbusca/ctop-busca/address"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	answers map[string]Point
	fail    map[string]bool
	err     error
	calls   []string
	at      []time.Time
}

func (f *fakeProvider) Lookup(_ context.Context, query string) (Point, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)
	f.at = append(f.at, time.Now())
	if f.err != nil || f.fail[query] {
		return Point{}, false, errors.New("boom")
	}
	p, ok := f.answers[query]
	return p, ok, nil
}

func record(row int, addr, bairro, city, at string) address.Record {
	return address.Record{Row: row, Fields: map[string]string{
		address.ColAddress:      addr,
		address.ColNeighborhood: bairro,
		address.ColCity:         city,
		address.ColAccessPoint:  at,
	}}
}

func fastResolver(p Provider, c Cache) *Resolver {
	return NewResolver(p, c, Options{Interval: time.Millisecond})
}

func TestQueries(t *testing.T) {
	rec := record(2, "Rua A, 10", "Centro", "Recife", "AT1")
	assert.Equal(t, "Rua A, 10, Centro, Recife, AT1, Brasil", PrimaryQuery(rec, "Recife", "Brasil"))
	assert.Equal(t, "Rua A, 10, Recife, Brasil", FallbackQuery(rec, "Recife", "Brasil"))

	bare := record(3, "Rua B", "", "Olinda", "")
	assert.Equal(t, "Rua B, Olinda, Brasil", PrimaryQuery(bare, "", "Brasil"))
}

func TestResolve_PrimaryFallbackAndMiss(t *testing.T) {
	p := &fakeProvider{answers: map[string]Point{
		"Rua A, Centro, Recife, AT1, Brasil": {Lat: -8.05, Lon: -34.9},
		"Rua B, Recife, Brasil":              {Lat: -8.06, Lon: -34.91},
	}}
	r := fastResolver(p, nil)
	in := []address.Record{
		record(2, "Rua A", "Centro", "Recife", "AT1"),
		record(3, "Rua B", "Boa Vista", "Recife", "AT1"),
		record(4, "Rua C", "Centro", "Recife", "AT1"),
	}

	res, err := r.Resolve(context.Background(), in, "Recife")
	require.NoError(t, err)
	require.NoError(t, res.Warning)
	require.Len(t, res.Records, 3)

	assert.Equal(t, address.Resolved, res.Records[0].Status)
	assert.InDelta(t, -8.05, *res.Records[0].Lat, 1e-9)
	assert.Equal(t, address.Resolved, res.Records[1].Status)
	assert.InDelta(t, -34.91, *res.Records[1].Lon, 1e-9)
	assert.Equal(t, address.NotFound, res.Records[2].Status)
	assert.Nil(t, res.Records[2].Lat)

	assert.Equal(t, 5, res.Stats.Lookups)
	assert.Equal(t, 2, res.Stats.Fallbacks)
	assert.Equal(t, 2, res.Stats.Resolved)
	assert.Equal(t, 1, res.Stats.NotFound)

	// input slice is untouched
	assert.Equal(t, address.Unresolved, in[0].Status)
}

func TestResolve_ShortCircuitWhenDone(t *testing.T) {
	p := &fakeProvider{}
	r := fastResolver(p, nil)
	done := record(2, "Rua A", "", "Recife", "")
	done.SetCoordinates(1, 2)
	miss := record(3, "Rua B", "", "Recife", "")
	miss.MarkNotFound()

	res, err := r.Resolve(context.Background(), []address.Record{done, miss}, "Recife")
	require.NoError(t, err)
	assert.True(t, res.Stats.Skipped)
	assert.Empty(t, p.calls)
	assert.Equal(t, int64(0), r.Totals().Passes)
}

func TestResolve_BlankAddressSkipsProvider(t *testing.T) {
	p := &fakeProvider{}
	r := fastResolver(p, nil)

	res, err := r.Resolve(context.Background(), []address.Record{record(2, "  ", "Centro", "Recife", "AT1")}, "Recife")
	require.NoError(t, err)
	assert.Equal(t, address.NotFound, res.Records[0].Status)
	assert.Empty(t, p.calls)
	assert.NoError(t, res.Warning)
}

func TestResolve_CacheAvoidsProvider(t *testing.T) {
	p := &fakeProvider{answers: map[string]Point{"Rua A, Recife, Brasil": {Lat: 1, Lon: 2}}}
	cache := NewMemoryCache()
	r := fastResolver(p, cache)
	in := []address.Record{record(2, "Rua A", "", "Recife", "")}

	_, err := r.Resolve(context.Background(), in, "Recife")
	require.NoError(t, err)
	require.Len(t, p.calls, 1)

	res, err := r.Resolve(context.Background(), in, "Recife")
	require.NoError(t, err)
	assert.Len(t, p.calls, 1)
	assert.Equal(t, 1, res.Stats.CacheHits)
	assert.Equal(t, 0, res.Stats.Lookups)
	assert.Equal(t, address.Resolved, res.Records[0].Status)
	assert.Equal(t, int64(1), r.Totals().CacheHits)
}

func TestResolve_ErrorsAreNotCached(t *testing.T) {
	p := &fakeProvider{err: errors.New("down")}
	cache := NewMemoryCache()
	r := fastResolver(p, cache)
	in := []address.Record{
		record(2, "Rua A", "", "Recife", ""),
		record(3, "Rua B", "", "Recife", ""),
	}

	res, err := r.Resolve(context.Background(), in, "Recife")
	require.NoError(t, err)
	assert.ErrorIs(t, res.Warning, ErrProviderUnavailable)
	assert.Equal(t, 0, cache.Len())
	for _, rec := range res.Records {
		assert.Nil(t, rec.Lat)
		assert.Equal(t, address.Unresolved, rec.Status)
	}
	assert.Equal(t, 2, res.Stats.Errors)
}

func TestResolve_PartialFailureHasNoWarning(t *testing.T) {
	p := &fakeProvider{
		answers: map[string]Point{"Rua A, Recife, Brasil": {Lat: 1, Lon: 2}},
		fail:    map[string]bool{"Rua B, Recife, Brasil": true},
	}
	r := fastResolver(p, nil)

	res, err := r.Resolve(context.Background(), []address.Record{
		record(2, "Rua A", "", "Recife", ""),
		record(3, "Rua B", "", "Recife", ""),
	}, "Recife")
	require.NoError(t, err)
	assert.NoError(t, res.Warning)
	assert.Equal(t, address.Resolved, res.Records[0].Status)
	assert.Equal(t, address.Unresolved, res.Records[1].Status)
}

func TestResolve_RespectsInterval(t *testing.T) {
	p := &fakeProvider{}
	r := NewResolver(p, nil, Options{Interval: 40 * time.Millisecond})

	_, err := r.Resolve(context.Background(), []address.Record{
		record(2, "Rua A", "", "Recife", ""),
		record(3, "Rua B", "", "Recife", ""),
		record(4, "Rua C", "", "Recife", ""),
	}, "Recife")
	require.NoError(t, err)
	require.Len(t, p.at, 3)
	for i := 1; i < len(p.at); i++ {
		assert.GreaterOrEqual(t, p.at[i].Sub(p.at[i-1]), 35*time.Millisecond)
	}
}

func TestResolve_CancelKeepsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := ProviderFunc(func(context.Context, string) (Point, bool, error) {
		calls++
		if calls == 1 {
			cancel()
		}
		return Point{Lat: 1, Lon: 1}, true, nil
	})
	r := NewResolver(p, nil, Options{Interval: time.Hour})

	res, err := r.Resolve(ctx, []address.Record{
		record(2, "Rua A", "", "Recife", ""),
		record(3, "Rua B", "", "Recife", ""),
	}, "Recife")
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Records, 2)
	assert.Equal(t, address.Resolved, res.Records[0].Status)
	assert.Equal(t, address.Unresolved, res.Records[1].Status)
	assert.Equal(t, 1, calls)
}
