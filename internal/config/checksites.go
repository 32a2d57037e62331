package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CheckSite is a website to search for existing reports near a location.
// URL may contain {lat}, {lon}, {latitude} and {longitude} tokens.
type CheckSite struct {
	Name string
	URL  string
}

// LoadCheckSites reads check_sites from the first existing file in paths.
// A missing file or an empty list gives no sites and no error; a file with
// the wrong shape is an error.
func LoadCheckSites(paths []string) ([]CheckSite, error) {
	path, ok := FirstExisting(paths)
	if !ok {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sites, err := parseCheckSites(data)
	if err != nil {
		return nil, fmt.Errorf("invalid %s (%s): %w", CheckFileName, path, err)
	}
	return sites, nil
}

func parseCheckSites(data []byte) ([]CheckSite, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || resolve(doc.Content[0]).Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: file must contain a YAML mapping", ErrInvalidConfig)
	}

	var raw *yaml.Node
	_ = pairs(resolve(doc.Content[0]), func(key string, value *yaml.Node) error {
		if key == "check_sites" {
			raw = value
		}
		return nil
	})
	if isAbsent(raw) {
		return nil, nil
	}
	if raw.Kind != yaml.SequenceNode {
		return nil, invalidf(raw, "check_sites must be a list, got %s", kindName(raw))
	}

	sites := make([]CheckSite, 0, len(raw.Content))
	for i, entry := range raw.Content {
		entry = resolve(entry)
		if entry.Kind != yaml.MappingNode {
			return nil, invalidf(entry, "check_sites[%d] must be a mapping with 'name' and 'url'", i)
		}
		var site CheckSite
		_ = pairs(entry, func(key string, value *yaml.Node) error {
			if !isString(value) {
				return nil
			}
			switch key {
			case "name":
				site.Name = strings.TrimSpace(value.Value)
			case "url":
				site.URL = strings.TrimSpace(value.Value)
			}
			return nil
		})
		if site.Name == "" {
			return nil, invalidf(entry, "check_sites[%d] is missing a valid 'name' string", i)
		}
		if site.URL == "" {
			return nil, invalidf(entry, "check_sites[%d] is missing a valid 'url' string", i)
		}
		sites = append(sites, site)
	}
	return sites, nil
}
