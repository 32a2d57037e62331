package cli

import (
	"fmt"
	"strings"

	"github.com/cyclekit/pothole-report/internal/config"
	"github.com/cyclekit/pothole-report/internal/report"
)

// selectionFromFlags validates raw flag values against the configured
// attributes. Categories missing from the config are reported through warnf
// and ignored; any unknown value is an error listing the valid ones.
func selectionFromFlags(raw map[string]string, attrs config.Attributes, warnf func(format string, args ...any)) (report.Selection, error) {
	sel := report.Selection{}
	for _, name := range report.Categories {
		value := strings.TrimSpace(raw[name])
		if value == "" {
			continue
		}
		cat, ok := attrs.Category(name)
		if !ok {
			warnf("Attribute '%s' not defined in config. Ignoring.", name)
			continue
		}

		values := report.ParseValues(name, value)
		var invalid []string
		for _, v := range values {
			if _, ok := cat.Description(v); !ok {
				invalid = append(invalid, v)
			}
		}
		if len(invalid) > 0 {
			return nil, fmt.Errorf("%w '%s' for attribute '%s'. Valid values: %s",
				ErrInvalidAttribute, strings.Join(invalid, ", "), name, strings.Join(cat.Keys(), ", "))
		}
		sel.Set(name, values)
	}
	return sel, nil
}
