package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// isAbsent reports whether a section was left out or set to null.
func isAbsent(n *yaml.Node) bool {
	n = resolve(n)
	return n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func isString(n *yaml.Node) bool {
	n = resolve(n)
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func kindName(n *yaml.Node) string {
	n = resolve(n)
	switch {
	case n == nil || n.Kind == 0:
		return "nothing"
	case n.Kind == yaml.MappingNode:
		return "a mapping"
	case n.Kind == yaml.SequenceNode:
		return "a list"
	}
	switch n.ShortTag() {
	case "!!str":
		return "a string"
	case "!!int", "!!float":
		return "a number"
	case "!!bool":
		return "a boolean"
	case "!!null":
		return "null"
	}
	return n.ShortTag()
}

func invalidf(n *yaml.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if n != nil && n.Line > 0 {
		return fmt.Errorf("%w: line %d: %s", ErrInvalidConfig, n.Line, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

// pairs walks a mapping node's key/value pairs.
func pairs(n *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, resolve(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// parseAttributes requires a mapping of categories, each a mapping of value
// keys to string descriptions. An absent section yields nil without error;
// presence is checked separately.
func parseAttributes(n *yaml.Node) (Attributes, error) {
	if isAbsent(n) {
		return nil, nil
	}
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, invalidf(n, "attributes must be a mapping, got %s", kindName(n))
	}

	attrs := Attributes{}
	err := pairs(n, func(name string, values *yaml.Node) error {
		if values.Kind != yaml.MappingNode {
			return invalidf(values, "attribute '%s' must be a mapping of values to descriptions, got %s", name, kindName(values))
		}
		cat := Category{Name: name, Choices: []Choice{}}
		err := pairs(values, func(key string, desc *yaml.Node) error {
			if !isString(desc) {
				return invalidf(desc, "attribute '%s' value '%s' must have a string description, got %s", name, key, kindName(desc))
			}
			cat.Choices = upsertChoice(cat.Choices, Choice{Key: key, Description: desc.Value})
			return nil
		})
		if err != nil {
			return err
		}
		attrs = upsertCategory(attrs, cat)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

func parseTemplate(n *yaml.Node) (string, error) {
	if isAbsent(n) {
		return "", nil
	}
	if !isString(n) {
		return "", invalidf(resolve(n), "report_template must be a string, got %s", kindName(n))
	}
	return resolve(n).Value, nil
}

// parsePhrases keeps every well-formed table and drops the rest.
func parsePhrases(n *yaml.Node) Phrases {
	phrases := Phrases{}
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return phrases
	}
	_ = pairs(n, func(table string, entries *yaml.Node) error {
		if entries.Kind != yaml.MappingNode {
			return nil
		}
		t := make(map[string]string, len(entries.Content)/2)
		_ = pairs(entries, func(key string, value *yaml.Node) error {
			if value.Kind == yaml.ScalarNode && value.ShortTag() != "!!null" {
				t[key] = value.Value
			}
			return nil
		})
		phrases[table] = t
		return nil
	})
	return phrases
}

func parseAdvice(n *yaml.Node) Advice {
	var advice Advice
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return advice
	}
	_ = pairs(n, func(key string, value *yaml.Node) error {
		switch key {
		case "key_phrases":
			if value.Kind != yaml.SequenceNode {
				return nil
			}
			for _, item := range value.Content {
				item = resolve(item)
				if item.Kind == yaml.ScalarNode && item.ShortTag() != "!!null" {
					advice.KeyPhrases = append(advice.KeyPhrases, item.Value)
				}
			}
		case "pro_tip":
			if value.Kind == yaml.ScalarNode && value.ShortTag() != "!!null" {
				advice.ProTip = value.Value
			}
		}
		return nil
	})
	return advice
}

func upsertChoice(choices []Choice, ch Choice) []Choice {
	for i := range choices {
		if choices[i].Key == ch.Key {
			choices[i] = ch
			return choices
		}
	}
	return append(choices, ch)
}

func upsertCategory(attrs Attributes, cat Category) Attributes {
	for i := range attrs {
		if attrs[i].Name == cat.Name {
			attrs[i] = cat
			return attrs
		}
	}
	return append(attrs, cat)
}
