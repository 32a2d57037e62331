package httpclient

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclekit/pothole-report/internal/config"
)

func TestNewDefaults(t *testing.T) {
	client := New(hclog.NewNullLogger(), config.HTTPClient{})
	assert.Equal(t, DefaultTimeout, client.GetClient().Timeout)
	assert.Equal(t, 0, client.RetryCount)
	assert.False(t, client.Debug)
	assert.False(t, client.IsProxySet())
}

func TestNewFromConfig(t *testing.T) {
	client := New(nil, config.HTTPClient{
		Debug:   true,
		Timeout: 2 * time.Second,
		Proxy:   "http://127.0.0.1:3128",
	})
	assert.Equal(t, 2*time.Second, client.GetClient().Timeout)
	assert.True(t, client.Debug)
	assert.True(t, client.IsProxySet())
}

func TestClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var result struct {
		OK bool `json:"ok"`
	}
	resp, err := New(hclog.NewNullLogger(), config.HTTPClient{}).R().SetResult(&result).Get(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.True(t, result.OK)
}

func TestHclogAdapter(t *testing.T) {
	var buf bytes.Buffer
	log := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Debug, DisableTime: true})
	adapter := NewHclogAdapter(log)

	adapter.Errorf("boom %d", 1)
	adapter.Warnf("careful %s", "now")
	adapter.Debugf("detail")

	out := buf.String()
	assert.Contains(t, out, "[ERROR] boom 1")
	assert.Contains(t, out, "[WARN]  careful now")
	assert.Contains(t, out, "[DEBUG] detail")
}
