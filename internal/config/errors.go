package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfigNotFound = errors.New("config not found")
	ErrInvalidConfig  = errors.New("invalid config")
	ErrLegacySchema   = errors.New("legacy config schema")
	ErrEmailNotFound  = errors.New("email not found in keyring")
)

const exampleConfig = `  report_url: "https://www.fillthathole.org.uk"
  keyring_account: "email"  # optional, default "email"
  attributes:
    depth:
      lt40mm: "Less than 40mm"
  report_template: "{severity}: {depth_description}"
  attribute_phrases:
    severity:
      gt50mm_sharp: "EMERGENCY"`

// NotFoundError lists every path searched for a config file.
type NotFoundError struct {
	Paths []string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	b.WriteString("config not found. Create one of:\n")
	for _, p := range e.Paths {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	b.WriteString("With content:\n")
	b.WriteString(exampleConfig)
	return b.String()
}

func (e *NotFoundError) Unwrap() error {
	return ErrConfigNotFound
}
