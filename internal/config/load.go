package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cyclekit/pothole-report/internal/credentials"
)

// Options controls where Load looks and whether an email is required.
type Options struct {
	// Path is an explicit config file; it disables the default search.
	Path string
	// SearchPaths replaces the default search order when Path is empty.
	SearchPaths []string
	// Store supplies the reporter email. Nil skips the lookup.
	Store credentials.Store
	// RequireEmail fails the load when no email is stored. Listing modes
	// leave it off.
	RequireEmail bool
}

func (o Options) paths() []string {
	if o.Path == "" && len(o.SearchPaths) > 0 {
		return o.SearchPaths
	}
	return SearchPaths(o.Path, FileName)
}

// fileConfig is the on-disk layout. Template sections stay as nodes so their
// shape can be checked key by key.
type fileConfig struct {
	ReportURL        string     `yaml:"report_url"`
	KeyringAccount   string     `yaml:"keyring_account"`
	Attributes       yaml.Node  `yaml:"attributes"`
	ReportTemplate   yaml.Node  `yaml:"report_template"`
	AttributePhrases yaml.Node  `yaml:"attribute_phrases"`
	Advice           yaml.Node  `yaml:"advice_for_reporters"`
	Templates        yaml.Node  `yaml:"templates"`
	RiskLevels       yaml.Node  `yaml:"risk_levels"`
	Logger           Logger     `yaml:"logger"`
	HTTPClient       HTTPClient `yaml:"http_client"`
	Geocoder         Geocoder   `yaml:"geocoder"`
}

// Load finds, parses and validates the config, then looks up the email.
// Checks run in order (file, shape, required fields, email) and stop at the
// first failure.
func Load(opts Options) (*Config, error) {
	paths := opts.paths()
	path, ok := FirstExisting(paths)
	if !ok {
		return nil, &NotFoundError{Paths: paths}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.LoadedFrom = path

	if opts.Store == nil {
		return cfg, nil
	}
	email, ok, err := opts.Store.Email(cfg.Identity)
	if err != nil && opts.RequireEmail {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if (!ok || email == "") && opts.RequireEmail {
		return nil, fmt.Errorf("%w. Run:\n  pothole-report setup\nOr store it manually in your OS keyring under %s",
			ErrEmailNotFound, cfg.Identity)
	}
	cfg.Email = email
	return cfg, nil
}

// Parse decodes and validates config file contents. The email is left empty.
func Parse(data []byte) (*Config, error) {
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	attrs, err := parseAttributes(&raw.Attributes)
	if err != nil {
		return nil, err
	}
	template, err := parseTemplate(&raw.ReportTemplate)
	if err != nil {
		return nil, err
	}

	if isAbsent(&raw.Attributes) {
		if !isAbsent(&raw.Templates) || !isAbsent(&raw.RiskLevels) {
			return nil, fmt.Errorf("%w: %w: 'templates' and 'risk_levels' are no longer read; "+
				"describe hazards with 'attributes', 'report_template' and 'attribute_phrases'",
				ErrInvalidConfig, ErrLegacySchema)
		}
		return nil, fmt.Errorf("%w: config must contain 'attributes' section defining available attribute values", ErrInvalidConfig)
	}
	if isAbsent(&raw.ReportTemplate) {
		return nil, fmt.Errorf("%w: config must contain 'report_template' with a parameterized template", ErrInvalidConfig)
	}

	reportURL := strings.TrimSpace(raw.ReportURL)
	if reportURL == "" {
		reportURL = DefaultReportURL
	}

	return &Config{
		ReportURL:      reportURL,
		KeyringAccount: credentials.DefaultIdentity(raw.KeyringAccount).Account,
		Identity:       credentials.DefaultIdentity(raw.KeyringAccount),
		Attributes:     attrs,
		ReportTemplate: template,
		Phrases:        parsePhrases(&raw.AttributePhrases),
		Advice:         parseAdvice(&raw.Advice),
		Logger:         raw.Logger,
		HTTPClient:     raw.HTTPClient,
		Geocoder:       raw.Geocoder,
	}, nil
}

// KeyringAccount returns keyring_account from the first readable config in
// paths, or the default account. Setup runs before a full config may exist,
// so parse problems are ignored here.
func KeyringAccount(paths []string) string {
	path, ok := FirstExisting(paths)
	if !ok {
		return credentials.DefaultAccount
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return credentials.DefaultAccount
	}
	var raw struct {
		KeyringAccount string `yaml:"keyring_account"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return credentials.DefaultAccount
	}
	return credentials.DefaultIdentity(raw.KeyringAccount).Account
}
