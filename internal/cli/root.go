package cli

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/cyclekit/pothole-report/internal/config"
	"github.com/cyclekit/pothole-report/internal/logger"
	"github.com/cyclekit/pothole-report/internal/photo"
	"github.com/cyclekit/pothole-report/internal/pipeline"
	"github.com/cyclekit/pothole-report/internal/render"
	"github.com/cyclekit/pothole-report/internal/report"
)

var attributeUsage = map[string]string{
	"depth":      "Depth category (e.g., lt40mm, gte40mm, gt50mm)",
	"edge":       "Edge type (e.g., sharp, rounded, gradual)",
	"width":      "Width/size (e.g., small, medium_fist, large_crater, clusters, longitudinal)",
	"location":   "Location context, comma-separated for several (e.g., primary_cycle_line,descent)",
	"visibility": "Visibility, comma-separated for several (e.g., obscured_water,obscured_shadows)",
	"surface":    "Surface condition (e.g., exposed_sub_base, loose_gravel, longitudinal_crack, hairline)",
}

type rootOptions struct {
	folder      string
	interactive bool
	configPath  string
	checkConfig string
	verbose     bool
	attrs       map[string]*string
}

func (o *rootOptions) rawAttributes() map[string]string {
	raw := make(map[string]string, len(o.attrs))
	for name, v := range o.attrs {
		raw[name] = *v
	}
	return raw
}

func (a *App) newRootCmd() *cobra.Command {
	opts := &rootOptions{attrs: map[string]*string{}}
	cmd := &cobra.Command{
		Use:                   "pothole-report -f FOLDER [attribute flags]",
		Short:                 "Batch-process pothole photos into a Fill That Hole report.",
		Long:                  "Reads GPS and capture time from a folder of photos, geocodes the earliest one and prints a ready-to-submit report.",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReport(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.folder, "folder", "f", "", "Folder containing JPG/PNG photos")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for attribute values")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	flags.StringVar(&opts.checkConfig, "check-config", "", "Path to "+config.CheckFileName)
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show inputs and processing details")
	for _, name := range report.Categories {
		opts.attrs[name] = flags.String(name, "", attributeUsage[name])
	}
	return cmd
}

func (a *App) runReport(cmd *cobra.Command, opts *rootOptions) error {
	out := a.presenter()

	if opts.verbose {
		out.Detail("Verbose mode enabled")
		if opts.configPath != "" {
			out.Detail("Config file: %s", opts.configPath)
		} else {
			out.Detail("Config search paths:")
			for _, p := range config.SearchPaths("", config.FileName) {
				mark := "✗"
				if config.Exists(p) {
					mark = "✓"
				}
				out.Detail("  %s %s", mark, p)
			}
		}
		folder := opts.folder
		if folder == "" {
			folder = "(not set)"
		}
		out.Detail("Folder: %s", folder)
		out.Detail("Interactive mode: %t\n", opts.interactive)
	}

	cfg, err := config.Load(config.Options{Path: opts.configPath, Store: a.Store, RequireEmail: true})
	if err != nil {
		return fatal(err)
	}
	log := logger.NewWithOutput(cfg.Logger, "pothole-report", opts.verbose, a.logOutput())

	if opts.verbose {
		out.Detail("Loaded config from: %s", cfg.LoadedFrom)
		out.Detail("Report URL: %s", cfg.ReportURL)
		out.Detail("Email: %s (from keyring: %s)", cfg.Email, cfg.Identity)
		out.Detail("Attributes available: %d categories\n", len(cfg.Attributes))
	}

	if opts.folder == "" {
		return NewCommandError(ErrFolderRequired, ExitUsage)
	}

	// Scan before prompting so a wrong path fails fast.
	images, err := photo.Scan(opts.folder)
	if err != nil {
		return fatal(err)
	}
	if len(images) == 0 {
		out.Notice("No JPG/PNG files found in folder.")
		return nil
	}
	if opts.verbose {
		out.Detail("Found %d image file(s) in folder", len(images))
		for _, img := range images {
			out.Detail("  - %s", img.Name)
		}
	}

	sel, err := a.selection(opts, cfg, out)
	if err != nil {
		return err
	}
	if opts.verbose {
		out.Detail("Selected attributes:")
		descs := report.Descriptions(sel, cfg.Attributes)
		for _, name := range sel.Names() {
			out.Detail("  %s: %s (%s)", name, sel.Raw(name), descs[name])
		}
	}

	text := report.GenerateText(sel, cfg)
	if opts.verbose {
		out.Detail("Generated report text: %s", preview(text, 100))
	}

	runner := &pipeline.Runner{
		Extractor: a.Extractor,
		Geocoder:  a.NewGeocoder(cfg, log),
		Logger:    log,
	}
	outcome, err := runner.Run(cmd.Context(), images, report.Details{
		ReportURL:    cfg.ReportURL,
		Email:        cfg.Email,
		Selection:    sel,
		Descriptions: report.Descriptions(sel, cfg.Attributes),
		Text:         text,
		CommandLine:  report.CommandLine(opts.folder, sel),
		Advice:       cfg.Advice,
		ImageNames:   photo.Names(images),
	})
	if err != nil {
		return fatal(err)
	}
	out.Summary(outcome.Summary)

	switch outcome.Status {
	case pipeline.StatusNoLocation:
		out.Notice("No reports generated (no images with GPS).")
		return nil
	case pipeline.StatusGeocodeFailed:
		if opts.verbose {
			a.verboseSelected(out, outcome.Selected)
		}
		out.Notice("Geocoding failed; no report generated.")
		return nil
	}

	if opts.verbose {
		a.verboseSelected(out, outcome.Selected)
		out.Detail("Geocoded to: %s - %s", outcome.Geocoded.Postcode, outcome.Geocoded.Address)
	}

	out.CheckLinks(a.checkLinks(opts, outcome.Record, out, log))
	out.Report(outcome.Record)
	return nil
}

// selection collects attributes from the prompt or the flags.
func (a *App) selection(opts *rootOptions, cfg *config.Config, out *render.Presenter) (report.Selection, error) {
	var (
		sel report.Selection
		err error
	)
	if opts.interactive {
		sel, err = promptSelection(a.reader(), a.Out, cfg.Attributes)
	} else {
		sel, err = selectionFromFlags(opts.rawAttributes(), cfg.Attributes, out.Warning)
	}
	if err != nil {
		return nil, fatal(err)
	}
	if sel.IsEmpty() {
		return nil, fatal(fmt.Errorf("%w. Use --interactive or provide attribute flags.\nExample: %s -f /path --depth gt50mm --edge sharp",
			ErrNoAttributes, report.CommandName))
	}
	return sel, nil
}

// checkLinks loads the check sites. Problems with the file are shown and
// the report is still printed.
func (a *App) checkLinks(opts *rootOptions, r report.Record, out *render.Presenter, log hclog.Logger) []report.CheckLink {
	paths := config.SearchPaths(opts.checkConfig, config.CheckFileName)
	sites, err := config.LoadCheckSites(paths)
	if err != nil {
		out.Error(err)
		return nil
	}
	if len(sites) == 0 {
		out.Warning("No check sites configured. See README.md for how to set up conf/%s.", config.CheckFileName)
		return nil
	}
	log.Debug("loaded check sites", "count", len(sites), "paths", strings.Join(paths, ", "))
	return report.CheckLinks(sites, r)
}

func (a *App) verboseSelected(out *render.Presenter, loc photo.Location) {
	taken := loc.TakenAtString()
	if taken == "" {
		taken = "(not available)"
	}
	out.Detail("Using earliest image for GPS: %s", loc.Image.Name)
	out.Detail("  Coordinates: %.6f, %.6f", loc.Lat, loc.Lon)
	out.Detail("  Date/time: %s", taken)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
