package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclekit/pothole-report/internal/config"
	"github.com/cyclekit/pothole-report/internal/httpclient"
)

func newTestGeocoder(t *testing.T, status int, body string) (*Nominatim, *http.Request, *int32) {
	t.Helper()
	var calls int32
	captured := &http.Request{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		*captured = *r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := httpclient.New(hclog.NewNullLogger(), config.HTTPClient{Timeout: 5 * time.Second})
	g := NewNominatim(client, config.Geocoder{BaseURL: srv.URL + "/", UserAgent: "pothole-report-test"}, hclog.NewNullLogger())
	return g, captured, &calls
}

func TestReverseFound(t *testing.T) {
	g, req, calls := newTestGeocoder(t, http.StatusOK, `{
		"display_name": "High Street, Guildford GU1 4RB, UK",
		"address": {"road": "High Street", "postcode": " GU1 4RB "}
	}`)

	res, ok := g.Reverse(context.Background(), 51.5, -0.1)
	require.True(t, ok)
	assert.Equal(t, Result{Postcode: "GU1 4RB", Address: "High Street, Guildford GU1 4RB, UK"}, res)

	assert.Equal(t, int32(1), *calls)
	assert.Equal(t, "/reverse", req.URL.Path)
	q := req.URL.Query()
	assert.Equal(t, "51.5", q.Get("lat"))
	assert.Equal(t, "-0.1", q.Get("lon"))
	assert.Equal(t, "jsonv2", q.Get("format"))
	assert.Equal(t, "1", q.Get("addressdetails"))
	assert.Equal(t, "pothole-report-test", req.Header.Get("User-Agent"))
}

func TestReverseAbsent(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "no postcode", status: http.StatusOK, body: `{"display_name": "Somewhere", "address": {}}`},
		{name: "blank postcode", status: http.StatusOK, body: `{"display_name": "Somewhere", "address": {"postcode": "   "}}`},
		{name: "null postcode", status: http.StatusOK, body: `{"display_name": "Somewhere", "address": {"postcode": null}}`},
		{name: "numeric postcode", status: http.StatusOK, body: `{"display_name": "Somewhere", "address": {"postcode": 12345}}`},
		{name: "no address", status: http.StatusOK, body: `{"display_name": "Somewhere"}`},
		{name: "provider error", status: http.StatusOK, body: `{"error": "Unable to geocode"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`},
		{name: "garbage", status: http.StatusOK, body: `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, _ := newTestGeocoder(t, tt.status, tt.body)
			res, ok := g.Reverse(context.Background(), 0, 0)
			assert.False(t, ok)
			assert.Equal(t, Result{}, res)
		})
	}
}

func TestReverseTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := httpclient.New(hclog.NewNullLogger(), config.HTTPClient{Timeout: time.Second})
	g := NewNominatim(client, config.Geocoder{BaseURL: url}, nil)
	_, ok := g.Reverse(context.Background(), 51.5, -0.1)
	assert.False(t, ok)
}

func TestReverseCancelled(t *testing.T) {
	g, _, _ := newTestGeocoder(t, http.StatusOK, `{"address": {"postcode": "GU1 4RB"}}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := g.Reverse(ctx, 51.5, -0.1)
	assert.False(t, ok)
}

func TestNewNominatimDefaults(t *testing.T) {
	g := NewNominatim(httpclient.New(nil, config.HTTPClient{}), config.Geocoder{}, nil)
	assert.Equal(t, DefaultBaseURL, g.baseURL)
	assert.Equal(t, DefaultUserAgent, g.userAgent)
}
