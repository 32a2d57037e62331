package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclekit/pothole-report/internal/config"
)

var testAttributes = config.Attributes{
	{Name: "depth", Choices: []config.Choice{{Key: "lt40mm", Description: "Less than 40mm"}, {Key: "gt50mm", Description: "Greater than 50mm"}}},
	{Name: "location", Choices: []config.Choice{{Key: "primary_cycle_line"}, {Key: "descent"}, {Key: "junction"}}},
}

func TestSelectionFromFlags(t *testing.T) {
	var warnings []string
	warnf := func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) }

	sel, err := selectionFromFlags(map[string]string{
		"depth":    " gt50mm ",
		"location": "descent, primary_cycle_line,descent",
		"edge":     "sharp",
		"width":    "",
	}, testAttributes, warnf)
	require.NoError(t, err)
	assert.Equal(t, []string{"gt50mm"}, sel.Values("depth"))
	assert.Equal(t, []string{"descent", "primary_cycle_line"}, sel.Values("location"))
	assert.Equal(t, []string{"Attribute 'edge' not defined in config. Ignoring."}, warnings)

	_, err = selectionFromFlags(map[string]string{"location": "moon,descent,sun"}, testAttributes, warnf)
	require.ErrorIs(t, err, ErrInvalidAttribute)
	assert.EqualError(t, err, "invalid attribute value 'moon, sun' for attribute 'location'. Valid values: primary_cycle_line, descent, junction")

	sel, err = selectionFromFlags(map[string]string{}, testAttributes, warnf)
	require.NoError(t, err)
	assert.True(t, sel.IsEmpty())
}

func TestParseChoices(t *testing.T) {
	depth, _ := testAttributes.Category("depth")
	location, _ := testAttributes.Category("location")

	tests := []struct {
		name    string
		input   string
		cat     config.Category
		multi   bool
		want    []string
		problem string
	}{
		{name: "single", input: "2", cat: depth, want: []string{"gt50mm"}},
		{name: "single rejects list", input: "1,2", cat: depth, problem: "Invalid input. Enter a number 1-2 or press Enter to skip."},
		{name: "single out of range", input: "3", cat: depth, problem: "Invalid choice. Enter 1-2 or press Enter to skip."},
		{name: "multi keeps order", input: "3, 1", cat: location, multi: true, want: []string{"junction", "primary_cycle_line"}},
		{name: "multi dedupes", input: "2,2", cat: location, multi: true, want: []string{"descent"}},
		{name: "multi out of range", input: "1,0", cat: location, multi: true, problem: "Invalid choice(s). Enter numbers 1-3 separated by commas."},
		{name: "multi not a number", input: "1,x", cat: location, multi: true, problem: "Invalid input. Enter numbers 1-3 separated by commas."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, problem := parseChoices(tt.input, tt.cat, tt.multi)
			assert.Equal(t, tt.problem, problem)
			assert.Equal(t, tt.want, keys)
		})
	}
}
