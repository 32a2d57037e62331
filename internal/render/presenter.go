// Package render prints report records and run messages to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/cyclekit/pothole-report/internal/config"
	"github.com/cyclekit/pothole-report/internal/pipeline"
	"github.com/cyclekit/pothole-report/internal/report"
)

// imageColumns is the width of the batch image table.
const imageColumns = 3

var (
	bold    = color.New(color.Bold)
	link    = color.New(color.Bold, color.FgCyan)
	dim     = color.New(color.Faint)
	warn    = color.New(color.FgYellow)
	failure = color.New(color.FgRed)
	success = color.New(color.FgGreen)
	heading = map[string]*color.Color{
		"blue":   color.New(color.Bold, color.FgBlue),
		"green":  color.New(color.Bold, color.FgGreen),
		"yellow": color.New(color.Bold, color.FgYellow),
	}
)

// Presenter writes the report to Out and diagnostics to Err, so the report
// can be piped on its own.
type Presenter struct {
	Out io.Writer
	Err io.Writer
}

// New returns a Presenter. Color follows fatih/color's terminal detection.
func New(out, errOut io.Writer) *Presenter {
	return &Presenter{Out: out, Err: errOut}
}

// Detail prints a dimmed verbose line to Err.
func (p *Presenter) Detail(format string, args ...any) {
	dim.Fprintf(p.Err, format+"\n", args...)
}

// Notice prints a neutral outcome to Out.
func (p *Presenter) Notice(format string, args ...any) {
	warn.Fprintf(p.Out, format+"\n", args...)
}

// Warning prints a non-fatal problem to Err.
func (p *Presenter) Warning(format string, args ...any) {
	fmt.Fprintf(p.Err, "%s %s\n", warn.Sprint("Warning:"), fmt.Sprintf(format, args...))
}

// Error prints err to Err.
func (p *Presenter) Error(err error) {
	fmt.Fprintf(p.Err, "%s %v\n", failure.Sprint("Error:"), err)
}

// Success prints a confirmation to Out.
func (p *Presenter) Success(format string, args ...any) {
	success.Fprintf(p.Out, format+"\n", args...)
}

// Summary reports how the batch was classified.
func (p *Presenter) Summary(s pipeline.Summary) {
	dim.Fprintf(p.Err, "Image Processing Progress: 100%% (%d image(s) processed)\n", s.Total)
	if s.Unreadable > 0 {
		warn.Fprintf(p.Err, "Skipped %d unreadable image(s).\n", s.Unreadable)
	}
	if s.NoGPS > 0 {
		warn.Fprintf(p.Err, "Skipped %d image(s) with no GPS data.\n", s.NoGPS)
	}
}

// CheckLinks prints the existing-reports panel. Nothing is printed for no links.
func (p *Presenter) CheckLinks(links []report.CheckLink) {
	if len(links) == 0 {
		return
	}
	p.section("Existing pothole reports", "green")
	for _, l := range links {
		fmt.Fprintf(p.Out, "%s %s\n", bold.Sprint(l.Name+":"), link.Sprint(l.URL))
	}
	fmt.Fprintln(p.Out)
}

// Report prints one record.
func (p *Presenter) Report(r report.Record) {
	p.section("Report: "+r.Image.Name, "blue")

	taken := r.TakenAtString()
	if taken == "" {
		taken = "—"
	}
	p.field("File", r.Image.Name)
	p.field("Date/Time taken", taken)
	p.field("Postcode", r.Postcode)
	p.field("Address", r.Address)
	p.field("Coordinates", fmt.Sprintf("%.4f, %.4f", r.Lat, r.Lon))
	fmt.Fprintln(p.Out)
	fmt.Fprintf(p.Out, "%s %s\n\n", bold.Sprint("Fill That Hole:"), link.Sprint(r.ReportURL))
	fmt.Fprintf(p.Out, "%s %s\n\n", bold.Sprint("Google Maps:"), link.Sprint(r.MapsURL))

	bold.Fprintln(p.Out, "Attributes:")
	names := r.Attributes.Names()
	if len(names) == 0 {
		fmt.Fprintln(p.Out, "  (none)")
	}
	for _, name := range names {
		if desc := r.Descriptions[name]; desc != "" {
			fmt.Fprintf(p.Out, "  %s: (%s)\n", name, desc)
		} else {
			fmt.Fprintf(p.Out, "  %s: %s\n", name, r.Attributes.Raw(name))
		}
	}
	fmt.Fprintln(p.Out)

	bold.Fprintln(p.Out, "Report:")
	fmt.Fprintf(p.Out, "%s\n\n", r.Text)
	p.field("Report as", r.Email)
	fmt.Fprintln(p.Out)

	if !r.Advice.IsZero() {
		p.section("Advice for Reporters", "yellow")
		for _, line := range AdviceLines(r.Advice) {
			fmt.Fprintln(p.Out, line)
		}
		fmt.Fprintln(p.Out)
	}

	p.imageTable(r.ImageNames)

	if r.CommandLine != "" {
		fmt.Fprintln(p.Out)
		bold.Fprintln(p.Out, "Command:")
		fmt.Fprintln(p.Out, r.CommandLine)
	}
}

// AdviceLines formats the advice panel body.
func AdviceLines(a config.Advice) []string {
	var lines []string
	if len(a.KeyPhrases) > 0 {
		lines = append(lines, bold.Sprint("Key Phrases:")+" "+strings.Join(a.KeyPhrases, ", "))
	}
	if a.ProTip != "" {
		lines = append(lines, bold.Sprint("Pro Tip:")+" "+a.ProTip)
	}
	return lines
}

// Attributes lists every category with its values and descriptions.
func (p *Presenter) Attributes(attrs config.Attributes) {
	if len(attrs) == 0 {
		p.Notice("No attributes defined in config.")
		return
	}
	table := tablewriter.NewWriter(p.Out)
	table.SetHeader([]string{"Attribute", "Value", "Description"})
	table.SetAutoWrapText(false)
	table.SetAutoMergeCells(true)
	table.SetRowLine(true)
	for _, cat := range attrs {
		for _, ch := range cat.Choices {
			table.Append([]string{cat.Name, ch.Key, ch.Description})
		}
	}
	table.Render()
}

func (p *Presenter) imageTable(names []string) {
	if len(names) == 0 {
		return
	}
	table := tablewriter.NewWriter(p.Out)
	table.SetAutoWrapText(false)
	if !color.NoColor {
		table.SetColumnColor(cyanColumns()...)
	}
	for _, row := range ImageRows(names) {
		table.Append(row)
	}
	table.Render()
}

// ImageRows splits names into rows of three, padding the last row.
func ImageRows(names []string) [][]string {
	var rows [][]string
	for i := 0; i < len(names); i += imageColumns {
		row := make([]string, imageColumns)
		copy(row, names[i:min(i+imageColumns, len(names))])
		rows = append(rows, row)
	}
	return rows
}

func cyanColumns() []tablewriter.Colors {
	cols := make([]tablewriter.Colors, imageColumns)
	for i := range cols {
		cols[i] = tablewriter.Colors{tablewriter.FgCyanColor}
	}
	return cols
}

func (p *Presenter) section(title, style string) {
	c := heading[style]
	c.Fprintln(p.Out, title)
	c.Fprintln(p.Out, strings.Repeat("─", len([]rune(title))))
}

func (p *Presenter) field(label, value string) {
	fmt.Fprintf(p.Out, "%s %s\n", bold.Sprint(label+":"), value)
}
