package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclekit/pothole-report/internal/credentials"
)

const testConfig = `report_url: "https://example.fillthathole.org"
attributes:
  depth:
    lt40mm: "Less than 40mm (sub-intervention)"
    gte40mm: "40mm or greater (meets intervention level)"
    gt50mm: "Greater than 50mm (emergency intervention)"
  edge:
    sharp: "Sharp, vertical shear edges"
    rounded: "Rounded edges"
  location:
    primary_cycle_line: "Primary cycle line / where cyclist expected"
    general: "General route"
report_template: "{severity}: {depth_description} defect located {location_description}."
attribute_phrases:
  severity:
    gt50mm_sharp_primary_cycle_line: "EMERGENCY"
    gte40mm_primary_cycle_line: "HIGH RISK"
  depth_description:
    lt40mm: "less than 40mm deep"
    gte40mm: "40mm or greater"
    gt50mm: "exceeds 50mm"
  location_description:
    primary_cycle_line: "in the primary line of travel"
    general: "on a general route"
advice_for_reporters:
  key_phrases:
    - "Test phrase 1"
    - "Test phrase 2"
  pro_tip: "Test pro tip"
logger:
  level: debug
http_client:
  timeout: 5s
geocoder:
  base_url: "http://localhost:8080"
`

type fakeStore struct {
	emails map[credentials.Identity]string
	err    error
}

func (f *fakeStore) Email(id credentials.Identity) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.emails[id]
	return v, ok, nil
}

func (f *fakeStore) SetEmail(id credentials.Identity, email string) error {
	f.emails[id] = email
	return nil
}

func (f *fakeStore) DeleteEmail(id credentials.Identity) error {
	delete(f.emails, id)
	return nil
}

func storeWith(account, email string) *fakeStore {
	return &fakeStore{emails: map[credentials.Identity]string{
		credentials.DefaultIdentity(account): email,
	}}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, testConfig)

	cfg, err := Load(Options{Path: path, Store: storeWith("", "rider@example.org"), RequireEmail: true})
	require.NoError(t, err)

	assert.Equal(t, "https://example.fillthathole.org", cfg.ReportURL)
	assert.Equal(t, "rider@example.org", cfg.Email)
	assert.Equal(t, path, cfg.LoadedFrom)
	assert.Equal(t, credentials.Identity{Service: "pothole-report", Account: "email"}, cfg.Identity)

	require.Len(t, cfg.Attributes, 3)
	assert.Equal(t, "depth", cfg.Attributes[0].Name)
	assert.Equal(t, []string{"lt40mm", "gte40mm", "gt50mm"}, cfg.Attributes[0].Keys())
	desc, ok := cfg.Attributes.Description("edge", "sharp")
	assert.True(t, ok)
	assert.Equal(t, "Sharp, vertical shear edges", desc)

	phrase, ok := cfg.Phrases.Lookup(SeverityTable, "gte40mm_primary_cycle_line")
	assert.True(t, ok)
	assert.Equal(t, "HIGH RISK", phrase)

	assert.Equal(t, []string{"Test phrase 1", "Test phrase 2"}, cfg.Advice.KeyPhrases)
	assert.Equal(t, "Test pro tip", cfg.Advice.ProTip)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 5*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, "http://localhost:8080", cfg.Geocoder.BaseURL)
}

func TestLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml")}

	_, err := Load(Options{SearchPaths: paths, Store: storeWith("", "x@y.z"), RequireEmail: true})
	require.ErrorIs(t, err, ErrConfigNotFound)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, paths, nf.Paths)
	assert.Contains(t, err.Error(), paths[0])
	assert.Contains(t, err.Error(), paths[1])
}

func TestLoadSearchOrder(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(second, []byte(testConfig), 0o644))

	cfg, err := Load(Options{
		SearchPaths: []string{filepath.Join(dir, "first.yaml"), second},
		Store:       storeWith("", "x@y.z"),
	})
	require.NoError(t, err)
	assert.Equal(t, second, cfg.LoadedFrom)
}

func TestLoadEmail(t *testing.T) {
	path := writeConfig(t, testConfig)

	t.Run("missing email is fatal", func(t *testing.T) {
		_, err := Load(Options{Path: path, Store: storeWith("", ""), RequireEmail: true})
		assert.ErrorIs(t, err, ErrEmailNotFound)
	})

	t.Run("missing email allowed when listing", func(t *testing.T) {
		cfg, err := Load(Options{Path: path, Store: &fakeStore{}})
		require.NoError(t, err)
		assert.Empty(t, cfg.Email)
	})

	t.Run("store error surfaces", func(t *testing.T) {
		_, err := Load(Options{Path: path, Store: &fakeStore{err: errors.New("dbus down")}, RequireEmail: true})
		assert.ErrorContains(t, err, "dbus down")
	})

	t.Run("custom keyring account", func(t *testing.T) {
		custom := writeConfig(t, "keyring_account: work\n"+testConfig)
		cfg, err := Load(Options{Path: custom, Store: storeWith("work", "work@example.org"), RequireEmail: true})
		require.NoError(t, err)
		assert.Equal(t, "work@example.org", cfg.Email)
		assert.Equal(t, "work", cfg.KeyringAccount)
	})
}

func TestLoadValidationBeforeEmail(t *testing.T) {
	path := writeConfig(t, "report_template: 'x'\n")
	_, err := Load(Options{Path: path, Store: &fakeStore{}, RequireEmail: true})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.NotErrorIs(t, err, ErrEmailNotFound)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("attributes: {}\nreport_template: '{severity}'\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultReportURL, cfg.ReportURL)
	assert.Equal(t, "email", cfg.KeyringAccount)
	assert.Empty(t, cfg.Attributes)
	assert.Empty(t, cfg.Phrases)
	assert.True(t, cfg.Advice.IsZero())
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "empty file",
			content: "",
			wantErr: "must contain 'attributes'",
		},
		{
			name:    "attributes not a mapping",
			content: "attributes: [depth]\nreport_template: x\n",
			wantErr: "attributes must be a mapping",
		},
		{
			name:    "category not a mapping",
			content: "attributes:\n  depth: deep\nreport_template: x\n",
			wantErr: "attribute 'depth' must be a mapping",
		},
		{
			name:    "description not a string",
			content: "attributes:\n  depth:\n    lt40mm: 40\nreport_template: x\n",
			wantErr: "attribute 'depth' value 'lt40mm' must have a string description",
		},
		{
			name:    "missing template",
			content: "attributes:\n  depth:\n    lt40mm: shallow\n",
			wantErr: "must contain 'report_template'",
		},
		{
			name:    "template not a string",
			content: "attributes: {}\nreport_template:\n  text: x\n",
			wantErr: "report_template must be a string",
		},
		{
			name:    "shape checked before presence",
			content: "attributes:\n  depth: 3\n",
			wantErr: "attribute 'depth' must be a mapping",
		},
		{
			name:    "not yaml mapping",
			content: "- a\n- b\n",
			wantErr: "invalid config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseLegacySchema(t *testing.T) {
	for _, content := range []string{
		"templates:\n  high-risk: 'urgent'\n",
		"risk_levels:\n  level1: 'low'\n",
	} {
		_, err := Parse([]byte(content))
		assert.ErrorIs(t, err, ErrLegacySchema)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestParseLenientSecondaryData(t *testing.T) {
	content := `attributes: {}
report_template: x
attribute_phrases:
  severity: "not a table"
  depth_description:
    gt50mm: "exceeds 50mm"
    nested: {a: b}
advice_for_reporters:
  key_phrases: "not a list"
  pro_tip: "Be specific"
`
	cfg, err := Parse([]byte(content))
	require.NoError(t, err)

	_, ok := cfg.Phrases[SeverityTable]
	assert.False(t, ok)
	assert.Equal(t, map[string]string{"gt50mm": "exceeds 50mm"}, cfg.Phrases["depth_description"])
	assert.Empty(t, cfg.Advice.KeyPhrases)
	assert.Equal(t, "Be specific", cfg.Advice.ProTip)

	cfg, err = Parse([]byte("attributes: {}\nreport_template: x\nattribute_phrases: [1, 2]\nadvice_for_reporters: 7\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Phrases)
	assert.True(t, cfg.Advice.IsZero())
}

func TestKeyringAccount(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "email", KeyringAccount([]string{filepath.Join(dir, "missing.yaml")}))

	path := writeConfig(t, "keyring_account: personal\n")
	assert.Equal(t, "personal", KeyringAccount([]string{path}))
}

func TestSearchPaths(t *testing.T) {
	assert.Equal(t, []string{"/tmp/custom.yaml"}, SearchPaths("/tmp/custom.yaml", FileName))

	paths := SearchPaths("", FileName)
	require.NotEmpty(t, paths)
	assert.Equal(t, filepath.Join("conf", FileName), filepath.Join(filepath.Base(filepath.Dir(paths[0])), filepath.Base(paths[0])))
}
