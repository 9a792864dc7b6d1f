package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimLookup(t *testing.T) {
	var gotQuery, gotAgent, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		switch gotQuery {
		case "nowhere":
			_, _ = w.Write([]byte(`[]`))
		case "broken":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "garbage":
			_, _ = w.Write([]byte(`{"lat":`))
		default:
			_, _ = w.Write([]byte(`[{"lat":"-8.0476","lon":"-34.8770","display_name":"Recife"}]`))
		}
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL+"/", "ctop-busca-test/1.0", 5*time.Second)
	ctx := context.Background()

	p, found, err := n.Lookup(ctx, "Rua da Aurora, Recife, Brasil")
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, -8.0476, p.Lat, 1e-9)
	assert.InDelta(t, -34.8770, p.Lon, 1e-9)
	assert.Equal(t, "Rua da Aurora, Recife, Brasil", gotQuery)
	assert.Equal(t, "1", gotLimit)
	assert.Equal(t, "ctop-busca-test/1.0", gotAgent)

	_, found, err = n.Lookup(ctx, "nowhere")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = n.Lookup(ctx, "broken")
	assert.Error(t, err)

	_, _, err = n.Lookup(ctx, "garbage")
	assert.Error(t, err)
}

func TestNominatimLookup_CancelledContext(t *testing.T) {
	n := NewNominatim("http://127.0.0.1:1", "test", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := n.Lookup(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
