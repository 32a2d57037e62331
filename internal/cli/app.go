// Package cli wires the pothole-report commands.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/cyclekit/pothole-report/internal/config"
	"github.com/cyclekit/pothole-report/internal/credentials"
	"github.com/cyclekit/pothole-report/internal/geocode"
	"github.com/cyclekit/pothole-report/internal/httpclient"
	"github.com/cyclekit/pothole-report/internal/photo"
	"github.com/cyclekit/pothole-report/internal/pipeline"
	"github.com/cyclekit/pothole-report/internal/render"
)

// App holds the dependencies shared by every command.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Store credentials.Store
	// NewGeocoder builds the geocoder for a run.
	NewGeocoder func(cfg *config.Config, logger hclog.Logger) geocode.Geocoder
	// Extractor reads image locations.
	Extractor pipeline.Extractor
	// LogOutput receives structured logs; nil means Err.
	LogOutput io.Writer

	stdin *bufio.Reader
}

// NewApp returns an App using the process streams and the system keyring.
func NewApp() *App {
	return &App{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Store:       credentials.Keyring{},
		NewGeocoder: newNominatim,
		Extractor:   photo.ExifExtractor{},
	}
}

func newNominatim(cfg *config.Config, logger hclog.Logger) geocode.Geocoder {
	client := httpclient.New(logger.Named("http"), cfg.HTTPClient)
	return geocode.NewNominatim(client, cfg.Geocoder, logger.Named("geocode"))
}

func (a *App) reader() *bufio.Reader {
	if a.stdin == nil {
		a.stdin = bufio.NewReader(a.In)
	}
	return a.stdin
}

func (a *App) presenter() *render.Presenter {
	return render.New(a.Out, a.Err)
}

func (a *App) logOutput() io.Writer {
	if a.LogOutput != nil {
		return a.LogOutput
	}
	return a.Err
}

// Command builds the root command with its subcommands.
func (a *App) Command() *cobra.Command {
	root := a.newRootCmd()
	root.AddCommand(a.newSetupCmd(), a.newRemoveKeyringCmd(), a.newAttributesCmd())
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// Run executes args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	cmd := a.Command()
	cmd.SetArgs(args)
	cmd.SetIn(a.In)
	cmd.SetOut(a.Out)
	cmd.SetErr(a.Err)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		a.presenter().Error(err)
	}
	return exitCode(err)
}

// Execute runs the command line of the current process.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewApp().Run(ctx, os.Args[1:])
}
