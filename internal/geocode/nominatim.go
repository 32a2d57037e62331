// Package geocode turns coordinates into a postal code and display address.
package geocode

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/cyclekit/pothole-report/internal/config"
)

const (
	// DefaultBaseURL is the public Nominatim API endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies the tool, as the Nominatim usage policy requires.
	DefaultUserAgent = "pothole-report/0.1.0"
)

// Result is a successful reverse lookup.
type Result struct {
	Postcode string
	Address  string
}

// Geocoder resolves a location. ok is false when no usable postal code was
// found for any reason, including transport failures.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (res Result, ok bool)
}

// nominatimResponse is the subset of a /reverse reply that is read. Address
// values are left untyped so a malformed postcode reads as missing rather than
// failing the decode.
type nominatimResponse struct {
	DisplayName string         `json:"display_name"`
	Address     map[string]any `json:"address"`
	Error       string         `json:"error"`
}

// Nominatim queries a Nominatim server for reverse geocoding.
type Nominatim struct {
	client    *resty.Client
	baseURL   string
	userAgent string
	logger    hclog.Logger
}

// NewNominatim creates a client against cfg.BaseURL, or the public server
// when unset.
func NewNominatim(client *resty.Client, cfg config.Geocoder, logger hclog.Logger) *Nominatim {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Nominatim{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Reverse performs one reverse lookup for (lat, lon).
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (Result, bool) {
	var body nominatimResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", n.userAgent).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"lat":            strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":            strconv.FormatFloat(lon, 'f', -1, 64),
			"format":         "jsonv2",
			"addressdetails": "1",
		}).
		ForceContentType("application/json").
		SetResult(&body).
		Get(n.baseURL + "/reverse")
	if err != nil {
		n.logger.Warn("reverse geocoding request failed", "lat", lat, "lon", lon, "error", err)
		return Result{}, false
	}
	if resp.IsError() {
		n.logger.Warn("reverse geocoding returned an error status", "status", resp.StatusCode(), "body", truncate(resp.String(), 200))
		return Result{}, false
	}
	if body.Error != "" {
		n.logger.Debug("no address for location", "lat", lat, "lon", lon, "reason", body.Error)
		return Result{}, false
	}

	postcode, _ := body.Address["postcode"].(string)
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		n.logger.Debug("address has no postal code", "lat", lat, "lon", lon, "address", body.DisplayName)
		return Result{}, false
	}
	return Result{Postcode: postcode, Address: body.DisplayName}, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
