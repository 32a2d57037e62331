// Package report turns an attribute selection and a located photo into the
// text and record a reporter submits.
package report

import (
	"sort"
	"strings"

	"github.com/cyclekit/pothole-report/internal/config"
)

// Categories are the attribute categories the generator reads, in the order
// their placeholders are filled.
var Categories = []string{"depth", "edge", "width", "location", "visibility", "surface"}

// severityCategories make up the composite severity key, in key order.
var severityCategories = []string{"depth", "edge", "location"}

// IsMultiValue reports whether category accepts several comma-separated values.
func IsMultiValue(category string) bool {
	return category == "location" || category == "visibility"
}

// ParseValues splits a raw flag value for category. Multi-value categories
// split on commas and drop blanks; others keep the trimmed value whole.
func ParseValues(category, raw string) []string {
	if !IsMultiValue(category) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		return []string{raw}
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" && !contains(values, v) {
			values = append(values, v)
		}
	}
	return values
}

// Selection maps a category to its selected value keys in selection order.
type Selection map[string][]string

// Set records values for category, dropping the category when values is empty.
func (s Selection) Set(category string, values []string) {
	if len(values) == 0 {
		delete(s, category)
		return
	}
	s[category] = values
}

// Values returns the keys selected for category.
func (s Selection) Values(category string) []string {
	return s[category]
}

// Raw returns the selection for category in flag form, e.g. "a,b".
func (s Selection) Raw(category string) string {
	return strings.Join(s[category], ",")
}

// Names returns the selected categories sorted by name.
func (s Selection) Names() []string {
	names := make([]string, 0, len(s))
	for name, values := range s {
		if len(values) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of s.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	c := make(Selection, len(s))
	for name, values := range s {
		c[name] = append([]string(nil), values...)
	}
	return c
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s.Names()) == 0
}

// Descriptions returns, for every selected category defined in attrs, the
// configured descriptions of its values. Multi-value selections are joined
// with ", " and fall back to the key for unknown values; single values
// without a description are left out.
func Descriptions(sel Selection, attrs config.Attributes) map[string]string {
	out := make(map[string]string, len(sel))
	for _, name := range sel.Names() {
		cat, ok := attrs.Category(name)
		if !ok {
			continue
		}
		values := sel.Values(name)
		if IsMultiValue(name) && len(values) > 1 {
			descs := make([]string, len(values))
			for i, v := range values {
				if d, ok := cat.Description(v); ok {
					descs[i] = d
				} else {
					descs[i] = v
				}
			}
			out[name] = strings.Join(descs, ", ")
			continue
		}
		if d, ok := cat.Description(values[0]); ok {
			out[name] = d
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
