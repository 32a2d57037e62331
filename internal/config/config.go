package config

import (
	"time"

	"github.com/cyclekit/pothole-report/internal/credentials"
)

const (
	// DefaultReportURL is used when report_url is not set.
	DefaultReportURL = "https://www.fillthathole.org.uk"
	// FileName is the report config file name looked up in each search directory.
	FileName = "pothole-report.yaml"
	// CheckFileName lists sites to check for existing reports.
	CheckFileName = "pothole-checking.yaml"

	appDirName = "pothole-report"
)

// Config is the validated report configuration for one run.
type Config struct {
	ReportURL      string
	KeyringAccount string
	// Email comes from the credential store, never from the file.
	Email    string
	Identity credentials.Identity

	Attributes     Attributes
	ReportTemplate string
	Phrases        Phrases
	Advice         Advice

	Logger     Logger
	HTTPClient HTTPClient
	Geocoder   Geocoder

	// LoadedFrom is the path the config was read from.
	LoadedFrom string
}

// Logger configures log output.
type Logger struct {
	Level string `yaml:"level"`
}

// HTTPClient configures the client used for geocoding.
type HTTPClient struct {
	Debug   bool          `yaml:"debug"`
	Timeout time.Duration `yaml:"timeout"`
	Proxy   string        `yaml:"proxy"`
}

// Geocoder configures the reverse geocoding provider.
type Geocoder struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

// Choice is one selectable value of an attribute category.
type Choice struct {
	Key         string
	Description string
}

// Category lists the choices of one attribute, in file order.
type Category struct {
	Name    string
	Choices []Choice
}

// Description returns the description for key.
func (c Category) Description(key string) (string, bool) {
	for _, ch := range c.Choices {
		if ch.Key == key {
			return ch.Description, true
		}
	}
	return "", false
}

// Keys returns the choice keys in file order.
func (c Category) Keys() []string {
	keys := make([]string, len(c.Choices))
	for i, ch := range c.Choices {
		keys[i] = ch.Key
	}
	return keys
}

// Attributes holds the attribute categories in file order.
type Attributes []Category

// Category returns the category called name.
func (a Attributes) Category(name string) (Category, bool) {
	for _, c := range a {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Description returns the description of key within category.
func (a Attributes) Description(category, key string) (string, bool) {
	c, ok := a.Category(category)
	if !ok {
		return "", false
	}
	return c.Description(key)
}

// SeverityTable is the attribute_phrases table keyed by composite severity keys.
const SeverityTable = "severity"

// Phrases maps a phrase table name (e.g. "depth_description") to its
// key → phrase entries.
type Phrases map[string]map[string]string

// Lookup returns the phrase for key in table.
func (p Phrases) Lookup(table, key string) (string, bool) {
	entries, ok := p[table]
	if !ok {
		return "", false
	}
	v, ok := entries[key]
	return v, ok
}

// Advice is shown to the reporter next to the report.
type Advice struct {
	KeyPhrases []string
	ProTip     string
}

// IsZero reports whether there is no advice to show.
func (a Advice) IsZero() bool {
	return len(a.KeyPhrases) == 0 && a.ProTip == ""
}
