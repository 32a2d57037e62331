package report

import (
	"strings"

	"github.com/alessio/shellescape"

	"github.com/cyclekit/pothole-report/internal/config"
)

// CommandName is the program name used in reproduced command lines.
const CommandName = "pothole-report"

// CheckLink is a check site with its URL filled in for one location.
type CheckLink struct {
	Name string
	URL  string
}

// ExpandCheckURL replaces {lat}, {lon}, {latitude} and {longitude} in
// template with coordinates rounded to six places.
func ExpandCheckURL(template string, lat, lon float64) string {
	latStr, lonStr := FormatCoordinate(lat), FormatCoordinate(lon)
	return strings.NewReplacer(
		"{lat}", latStr,
		"{lon}", lonStr,
		"{latitude}", latStr,
		"{longitude}", lonStr,
	).Replace(template)
}

// CheckLinks expands every site for the record's location.
func CheckLinks(sites []config.CheckSite, r Record) []CheckLink {
	links := make([]CheckLink, 0, len(sites))
	for _, site := range sites {
		links = append(links, CheckLink{Name: site.Name, URL: ExpandCheckURL(site.URL, r.Lat, r.Lon)})
	}
	return links
}

// CommandLine renders an invocation that reproduces sel for folder, one
// flag per line with shell continuations. Flags are sorted by name.
func CommandLine(folder string, sel Selection) string {
	lines := []string{CommandName, "  -f " + shellescape.Quote(folder)}
	for _, name := range sel.Names() {
		lines = append(lines, "  --"+name+" "+shellescape.Quote(sel.Raw(name)))
	}
	return strings.Join(lines, " \\\n")
}
