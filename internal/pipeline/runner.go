// Package pipeline runs one batch: extract every image, pick the earliest
// located one, geocode it once and build the report record.
package pipeline

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/cyclekit/pothole-report/internal/geocode"
	"github.com/cyclekit/pothole-report/internal/photo"
	"github.com/cyclekit/pothole-report/internal/report"
)

// Extractor reads the location of one image. A nil location with a nil
// error means the image has no GPS position.
type Extractor interface {
	Extract(img photo.Image) (*photo.Location, error)
}

// Status is how a batch ended.
type Status int

const (
	// StatusNoImages means the folder held no images.
	StatusNoImages Status = iota
	// StatusNoLocation means no image carried a GPS position.
	StatusNoLocation
	// StatusGeocodeFailed means the selected location had no postal code.
	StatusGeocodeFailed
	// StatusReported means a record was built.
	StatusReported
)

func (s Status) String() string {
	switch s {
	case StatusNoImages:
		return "no images"
	case StatusNoLocation:
		return "no location"
	case StatusGeocodeFailed:
		return "geocode failed"
	case StatusReported:
		return "reported"
	}
	return "unknown"
}

// Summary counts how each image was classified.
type Summary struct {
	Total      int
	Located    int
	NoGPS      int
	Unreadable int
}

// Outcome is the result of one batch. Selected and Geocoded are set from
// StatusGeocodeFailed on; Record only for StatusReported.
type Outcome struct {
	Status   Status
	Summary  Summary
	Selected photo.Location
	Geocoded geocode.Result
	Record   report.Record
}

// Runner processes a batch sequentially.
type Runner struct {
	Extractor Extractor
	Geocoder  geocode.Geocoder
	Logger    hclog.Logger
}

// Run classifies images, selects the earliest located one and geocodes it
// exactly once. Per-image failures are counted, never returned; an error is
// returned only when ctx is done.
func (r *Runner) Run(ctx context.Context, images []photo.Image, details report.Details) (Outcome, error) {
	log := r.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	out := Outcome{Summary: Summary{Total: len(images)}}
	if len(images) == 0 {
		out.Status = StatusNoImages
		return out, nil
	}

	located := make([]photo.Location, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		loc, err := r.Extractor.Extract(img)
		switch {
		case err != nil:
			out.Summary.Unreadable++
			if errors.Is(err, photo.ErrUnreadable) {
				log.Debug("skipped unreadable image", "name", img.Name, "error", err)
			} else {
				log.Warn("skipped image", "name", img.Name, "error", err)
			}
		case loc == nil:
			out.Summary.NoGPS++
			log.Debug("skipped image without GPS", "name", img.Name)
		default:
			located = append(located, *loc)
		}
	}
	out.Summary.Located = len(located)

	selected, ok := photo.Earliest(located)
	if !ok {
		out.Status = StatusNoLocation
		return out, nil
	}
	out.Selected = selected
	log.Debug("using earliest image for GPS",
		"name", selected.Image.Name,
		"lat", selected.Lat,
		"lon", selected.Lon,
		"taken_at", selected.TakenAtString())

	geo, ok := r.Geocoder.Reverse(ctx, selected.Lat, selected.Lon)
	if !ok {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Status = StatusGeocodeFailed
		return out, nil
	}
	out.Geocoded = geo
	log.Debug("geocoded", "postcode", geo.Postcode, "address", geo.Address)

	out.Record = report.Build(selected, geo, details)
	out.Status = StatusReported
	return out, nil
}
