package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/cyclekit/pothole-report/internal/config"
)

// EnvLogLevel overrides the configured log level when set.
const EnvLogLevel = "POTHOLE_REPORT_LOG_LEVEL"

// New creates an hclog.Logger writing to stderr, so the report on stdout can
// be copied as-is. verbose forces DEBUG.
func New(cfg config.Logger, name string, verbose bool) hclog.Logger {
	return NewWithOutput(cfg, name, verbose, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg config.Logger, name string, verbose bool, out io.Writer) hclog.Logger {
	level := determineLogLevel(cfg, out)
	if verbose && level > hclog.Debug {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      out,
		Level:       level,
	})
}

// determineLogLevel returns the level from the environment variable, else the
// config, else INFO.
func determineLogLevel(cfg config.Logger, out io.Writer) hclog.Level {
	if env := os.Getenv(EnvLogLevel); env != "" {
		return parseLogLevel(strings.ToUpper(env), out)
	}
	if cfg.Level == "" {
		return hclog.Info
	}
	return parseLogLevel(strings.ToUpper(cfg.Level), out)
}

func parseLogLevel(levelStr string, out io.Writer) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      out,
		}).Warn("unrecognized log level, defaulting to INFO", "providedLevel", levelStr)
		return hclog.Info
	}
}
