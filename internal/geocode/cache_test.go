package geocode

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls  int
	result Result
	found  bool
}

func (g *countingGeocoder) Reverse(ctx context.Context, lat, lon float64) (Result, bool) {
	g.calls++
	return g.result, g.found
}

func TestCacheRemembersLookups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", cacheFileName)
	next := &countingGeocoder{result: Result{Postcode: "GU1 4RB", Address: "High Street"}, found: true}

	c, err := OpenCache(path, next)
	require.NoError(t, err)

	res, ok := c.Reverse(context.Background(), 51.5, -0.1)
	require.True(t, ok)
	assert.Equal(t, "GU1 4RB", res.Postcode)
	_, _ = c.Reverse(context.Background(), 51.5000001, -0.1)
	assert.Equal(t, 1, next.calls)
	require.NoError(t, c.Save())

	reopened, err := OpenCache(path, next)
	require.NoError(t, err)
	res, ok = reopened.Reverse(context.Background(), 51.5, -0.1)
	require.True(t, ok)
	assert.Equal(t, "High Street", res.Address)
	assert.Equal(t, 1, next.calls)
}

func TestCacheSkipsFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), cacheFileName)
	next := &countingGeocoder{}

	c, err := OpenCache(path, next)
	require.NoError(t, err)
	_, ok := c.Reverse(context.Background(), 1, 2)
	assert.False(t, ok)
	_, _ = c.Reverse(context.Background(), 1, 2)
	assert.Equal(t, 2, next.calls)

	require.NoError(t, c.Save())
	assert.NoFileExists(t, path)
}

func TestCacheExpiry(t *testing.T) {
	next := &countingGeocoder{result: Result{Postcode: "AB1 2CD"}, found: true}
	c, err := OpenCache(filepath.Join(t.TempDir(), cacheFileName), next)
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	_, _ = c.Reverse(context.Background(), 1, 2)

	now = now.Add(DefaultCacheMaxAge)
	_, _ = c.Reverse(context.Background(), 1, 2)
	assert.Equal(t, 2, next.calls)

	now = now.Add(DefaultCacheMaxAge)
	c.Prune()
	assert.Empty(t, c.file.Entries)
}

func TestOpenCacheVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), cacheFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "entries": {"1.000000,2.000000": {"postcode": "X"}}}`), 0o644))

	c, err := OpenCache(path, &countingGeocoder{})
	require.NoError(t, err)
	assert.Empty(t, c.file.Entries)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = OpenCache(path, &countingGeocoder{})
	assert.Error(t, err)
}
