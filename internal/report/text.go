package report

import (
	"regexp"
	"strings"

	"github.com/cyclekit/pothole-report/internal/config"
)

// DefaultSeverity is used when no severity phrase matches the selection.
const DefaultSeverity = "MEDIUM RISK"

var leftoverPlaceholder = regexp.MustCompile(`\{[^}]+\}`)

// SeverityKey joins the first selected value of depth, edge and location
// with "_", skipping categories that are not selected.
func SeverityKey(sel Selection) string {
	var parts []string
	for _, cat := range severityCategories {
		if values := sel.Values(cat); len(values) > 0 {
			parts = append(parts, values[0])
		}
	}
	return strings.Join(parts, "_")
}

// Severity looks up the severity phrase for sel.
func Severity(sel Selection, phrases config.Phrases) string {
	key := SeverityKey(sel)
	if key == "" {
		return DefaultSeverity
	}
	if phrase, ok := phrases.Lookup(config.SeverityTable, key); ok {
		return phrase
	}
	return DefaultSeverity
}

// Phrase resolves one value of category: the attribute_phrases entry, else
// the attribute description, else the key itself.
func Phrase(cfg *config.Config, category, key string) string {
	if phrase, ok := cfg.Phrases.Lookup(category+"_description", key); ok {
		return phrase
	}
	if desc, ok := cfg.Attributes.Description(category, key); ok {
		return desc
	}
	return key
}

// GenerateText fills the report template from sel. Placeholders with no
// selection are removed and whitespace is collapsed.
func GenerateText(sel Selection, cfg *config.Config) string {
	text := strings.ReplaceAll(cfg.ReportTemplate, "{severity}", Severity(sel, cfg.Phrases))

	for _, cat := range Categories {
		values := sel.Values(cat)
		if len(values) == 0 {
			continue
		}
		var value string
		if IsMultiValue(cat) {
			phrases := make([]string, len(values))
			for i, v := range values {
				phrases[i] = Phrase(cfg, cat, v)
			}
			value = strings.Join(phrases, " and ")
		} else {
			value = Phrase(cfg, cat, values[0])
		}
		text = strings.ReplaceAll(text, "{"+cat+"_description}", value)
	}

	text = leftoverPlaceholder.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
