package report

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cyclekit/pothole-report/internal/config"
	"github.com/cyclekit/pothole-report/internal/geocode"
	"github.com/cyclekit/pothole-report/internal/photo"
)

// coordinatePlaces is the precision used in URLs and check links.
const coordinatePlaces = 6

// Record is everything needed to file one report.
type Record struct {
	Image    photo.Image
	TakenAt  *time.Time
	Postcode string
	Address  string
	Lat      float64
	Lon      float64

	ReportURL string
	MapsURL   string

	Attributes   Selection
	Descriptions map[string]string
	Text         string
	CommandLine  string
	Advice       config.Advice
	Email        string
	ImageNames   []string
}

// TakenAtString formats the capture time, or returns "" when it is unknown.
func (r Record) TakenAtString() string {
	if r.TakenAt == nil {
		return ""
	}
	return r.TakenAt.Format(photo.CaptureTimeLayout)
}

// Details are the run inputs that go into a Record alongside the location.
type Details struct {
	ReportURL    string
	Email        string
	Selection    Selection
	Descriptions map[string]string
	Text         string
	CommandLine  string
	Advice       config.Advice
	ImageNames   []string
}

// Build assembles a Record. It does no I/O and shares no maps, slices or
// pointers with its arguments.
func Build(loc photo.Location, geo geocode.Result, d Details) Record {
	var taken *time.Time
	if loc.TakenAt != nil {
		t := *loc.TakenAt
		taken = &t
	}
	advice := d.Advice
	advice.KeyPhrases = append([]string(nil), d.Advice.KeyPhrases...)

	return Record{
		Image:        loc.Image,
		TakenAt:      taken,
		Postcode:     geo.Postcode,
		Address:      geo.Address,
		Lat:          loc.Lat,
		Lon:          loc.Lon,
		ReportURL:    ReportSiteURL(d.ReportURL, loc.Lat, loc.Lon),
		MapsURL:      MapsURL(loc.Lat, loc.Lon),
		Attributes:   d.Selection.Clone(),
		Descriptions: maps.Clone(d.Descriptions),
		Text:         d.Text,
		CommandLine:  d.CommandLine,
		Advice:       advice,
		Email:        d.Email,
		ImageNames:   append([]string(nil), d.ImageNames...),
	}
}

// ReportSiteURL links to the reporting site's map around (lat, lon).
func ReportSiteURL(base string, lat, lon float64) string {
	return fmt.Sprintf("%s/around?lat=%s&lon=%s&zoom=4",
		strings.TrimRight(base, "/"), FormatCoordinate(lat), FormatCoordinate(lon))
}

// MapsURL links to Google Maps at (lat, lon).
func MapsURL(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s", FormatCoordinate(lat), FormatCoordinate(lon))
}

// FormatCoordinate rounds v to six decimal places and prints it in its
// shortest form, keeping at least one decimal ("0.0", "51.5", "-0.123457").
func FormatCoordinate(v float64) string {
	s := decimal.NewFromFloat(v).Round(coordinatePlaces).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
