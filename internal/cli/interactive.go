package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/cyclekit/pothole-report/internal/config"
	"github.com/cyclekit/pothole-report/internal/report"
)

var (
	promptStyle   = color.New(color.Bold)
	titleStyle    = color.New(color.Bold, color.FgCyan)
	hintStyle     = color.New(color.Faint)
	selectedStyle = color.New(color.FgGreen)
	invalidStyle  = color.New(color.FgRed)
)

// promptSelection asks for each category in name order. Enter skips a
// category; invalid input asks again. End of input skips the rest.
func promptSelection(in *bufio.Reader, out io.Writer, attrs config.Attributes) (report.Selection, error) {
	cats := make([]config.Category, len(attrs))
	copy(cats, attrs)
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })

	titleStyle.Fprintln(out, "Interactive Attribute Selection")
	hintStyle.Fprintln(out, "Press Enter to skip an attribute")
	hintStyle.Fprintf(out, "For location and visibility, enter multiple numbers separated by commas (e.g., 1,5)\n\n")

	sel := report.Selection{}
	for _, cat := range cats {
		if len(cat.Choices) == 0 {
			continue
		}
		promptStyle.Fprintf(out, "%s:\n", capitalize(cat.Name))
		for i, ch := range cat.Choices {
			fmt.Fprintf(out, "  %d. %s: %s\n", i+1, ch.Key, ch.Description)
		}

		multi := report.IsMultiValue(cat.Name)
		suffix := fmt.Sprintf(" (1-%d", len(cat.Choices))
		if multi {
			suffix += ", comma-separated for multiple"
		}
		suffix += " or Enter to skip)"

		for {
			fmt.Fprintf(out, "\n%s%s: ", promptStyle.Sprintf("Select %s", cat.Name), suffix)
			line, err := in.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read selection: %w", err)
			}
			line = strings.TrimSpace(line)
			if line == "" {
				if errors.Is(err, io.EOF) {
					fmt.Fprintln(out)
					return sel, nil
				}
				break
			}

			keys, problem := parseChoices(line, cat, multi)
			if problem != "" {
				invalidStyle.Fprintln(out, problem)
				if errors.Is(err, io.EOF) {
					return sel, nil
				}
				continue
			}
			sel.Set(cat.Name, keys)
			selectedStyle.Fprintf(out, "Selected: %s\n\n", strings.Join(keys, ", "))
			break
		}
	}
	return sel, nil
}

// parseChoices turns "2" or, for multi-value categories, "1,3" into keys.
// problem describes invalid input.
func parseChoices(input string, cat config.Category, multi bool) (keys []string, problem string) {
	n := len(cat.Choices)
	parts := []string{input}
	if multi {
		parts = strings.Split(input, ",")
	}

	for _, p := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			if multi {
				return nil, fmt.Sprintf("Invalid input. Enter numbers 1-%d separated by commas.", n)
			}
			return nil, fmt.Sprintf("Invalid input. Enter a number 1-%d or press Enter to skip.", n)
		}
		if idx < 1 || idx > n {
			if multi {
				return nil, fmt.Sprintf("Invalid choice(s). Enter numbers 1-%d separated by commas.", n)
			}
			return nil, fmt.Sprintf("Invalid choice. Enter 1-%d or press Enter to skip.", n)
		}
		key := cat.Choices[idx-1].Key
		if !containsString(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys, ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
