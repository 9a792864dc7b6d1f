package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

// Nominatim queries a Nominatim compatible /search endpoint.
type Nominatim struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
	client    *fasthttp.Client
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NewNominatim creates a provider for endpoint (e.g.
// https://nominatim.openstreetmap.org). The usage policy of the public
// instance requires an identifying userAgent.
func NewNominatim(endpoint, userAgent string, timeout time.Duration) *Nominatim {
	return &Nominatim{
		endpoint:  strings.TrimRight(endpoint, "/"),
		userAgent: userAgent,
		timeout:   timeout,
		client: &fasthttp.Client{
			Name:                userAgent,
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
}

func (n *Nominatim) Lookup(ctx context.Context, query string) (Point, bool, error) {
	if err := ctx.Err(); err != nil {
		return Point{}, false, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.endpoint + "/search?" + params.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(n.userAgent)
	req.Header.Set("Accept", "application/json")

	timeout := n.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if err := n.client.DoTimeout(req, resp, timeout); err != nil {
		return Point{}, false, fmt.Errorf("nominatim request: %w", err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return Point{}, false, fmt.Errorf("nominatim returned status %d", code)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(resp.Body(), &places); err != nil {
		return Point{}, false, fmt.Errorf("nominatim response: %w", err)
	}
	if len(places) == 0 {
		return Point{}, false, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Point{}, false, fmt.Errorf("nominatim latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Point{}, false, fmt.Errorf("nominatim longitude %q: %w", places[0].Lon, err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Point{}, false, fmt.Errorf("nominatim coordinates out of range: %v,%v", lat, lon)
	}
	return Point{Lat: lat, Lon: lon}, true, nil
}
