package httpclient

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/cyclekit/pothole-report/internal/config"
)

// DefaultTimeout bounds a single request when http_client.timeout is unset.
const DefaultTimeout = 30 * time.Second

// HclogAdapter adapts an hclog.Logger to the resty Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates a new adapter that forwards messages to logger.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// New builds a resty client from the http_client config section. Requests are
// never retried: a run makes one geocoding call and a failure ends it.
func New(logger hclog.Logger, cfg config.HTTPClient) *resty.Client {
	client := resty.New()
	if logger != nil {
		client.SetLogger(NewHclogAdapter(logger))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client.
		SetDebug(cfg.Debug).
		SetRetryCount(0).
		SetTimeout(timeout)

	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
	}
	return client
}
