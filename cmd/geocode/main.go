// Command geocode writes a locations.json next to the photos in each
// sub-directory of a root folder, mapping file names to the postcode and
// address of where they were taken. It is useful for checking that a batch
// carries GPS data before filing a report.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	flag "github.com/spf13/pflag"

	"github.com/cyclekit/pothole-report/internal/config"
	"github.com/cyclekit/pothole-report/internal/geocode"
	"github.com/cyclekit/pothole-report/internal/httpclient"
	"github.com/cyclekit/pothole-report/internal/logger"
	"github.com/cyclekit/pothole-report/internal/photo"
	"github.com/cyclekit/pothole-report/internal/report"
)

// OutputName is written into each processed directory.
const OutputName = "locations.json"

// ImageLocation holds the location for an image.
type ImageLocation struct {
	Postcode  string  `json:"postcode,omitempty"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TakenAt   string  `json:"taken_at,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the tool and returns the process exit code.
func run(args []string) int {
	flags := flag.NewFlagSet("geocode", flag.ContinueOnError)
	rootDir := flags.StringP("root", "r", "", "Root directory containing sub-directories with images")
	configPath := flags.StringP("config", "c", "", "Path to config file")
	verbose := flags.BoolP("verbose", "v", false, "Log every request")
	cachePath := flags.String("cache", "", "Geocode cache file (default: user cache directory)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg := loadConfig(*configPath)
	log := logger.New(cfg.Logger, "geocode", *verbose)

	if *rootDir == "" {
		log.Error("please provide a root directory using the --root flag")
		return 2
	}
	entries, err := os.ReadDir(*rootDir)
	if err != nil {
		log.Error("failed to read root directory", "error", err)
		return 1
	}

	if *cachePath == "" {
		p, err := geocode.DefaultCachePath()
		if err != nil {
			log.Error("no cache location", "error", err)
			return 1
		}
		*cachePath = p
	}
	client := httpclient.New(log.Named("http"), cfg.HTTPClient)
	cache, err := geocode.OpenCache(*cachePath, geocode.NewNominatim(client, cfg.Geocoder, log.Named("nominatim")))
	if err != nil {
		log.Error("failed to open geocode cache", "error", err)
		return 1
	}
	cache.Prune()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := &walker{
		extractor: photo.ExifExtractor{},
		geocoder:  cache,
		logger:    log,
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if entry.IsDir() {
			w.processDir(ctx, filepath.Join(*rootDir, entry.Name()))
		}
	}

	if err := cache.Save(); err != nil {
		log.Warn("failed to save geocode cache", "error", err)
	}
	return 0
}

// loadConfig reads geocoder and HTTP settings. The report sections are not
// needed, so a missing config falls back to defaults.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(config.Options{Path: path})
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		return &config.Config{}
	}
	return cfg
}

type walker struct {
	extractor photo.ExifExtractor
	geocoder  geocode.Geocoder
	logger    hclog.Logger
}

func (w *walker) processDir(ctx context.Context, dir string) {
	log := w.logger.With("dir", dir)
	images, err := photo.Scan(dir)
	if err != nil {
		log.Warn("failed to scan directory", "error", err)
		return
	}

	locations := make(map[string]ImageLocation)
	for _, img := range images {
		loc, err := w.extractor.Extract(img)
		if err != nil {
			log.Warn("skipping unreadable image", "file", img.Name, "error", err)
			continue
		}
		if loc == nil {
			log.Debug("no GPS data", "file", img.Name)
			continue
		}
		geo, ok := w.geocoder.Reverse(ctx, loc.Lat, loc.Lon)
		if !ok {
			log.Debug("no postcode", "file", img.Name, "coordinates", report.FormatCoordinate(loc.Lat)+","+report.FormatCoordinate(loc.Lon))
		}
		locations[img.Name] = ImageLocation{
			Postcode:  geo.Postcode,
			Address:   geo.Address,
			Latitude:  loc.Lat,
			Longitude: loc.Lon,
			TakenAt:   loc.TakenAtString(),
		}
	}
	if len(locations) == 0 {
		log.Info("no located images")
		return
	}

	data, err := json.MarshalIndent(locations, "", "  ")
	if err != nil {
		log.Error("failed to marshal locations", "error", err)
		return
	}
	path := filepath.Join(dir, OutputName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Error("failed to write locations", "path", path, "error", err)
		return
	}
	log.Info("wrote locations", "path", path, "images", len(locations))
}
