// Package regions maps cohort states onto the four census regions used by
// the reference table, with a nationwide fallback.
package regions

import "strings"

// Nationwide is the fallback region for unknown or empty cohorts, and the
// reference column every entry is guaranteed to carry.
const Nationwide = "United States"

// Region names as they appear in reference-table headers
const (
	Northeast = "Northeast"
	Midwest   = "Midwest"
	South     = "South"
	West      = "West"
)

// stateRegions keys lowercase state names. The District of Columbia counts
// as South, matching the census grouping.
var stateRegions = map[string]string{
	"connecticut":   Northeast,
	"maine":         Northeast,
	"massachusetts": Northeast,
	"new hampshire": Northeast,
	"rhode island":  Northeast,
	"vermont":       Northeast,
	"new jersey":    Northeast,
	"new york":      Northeast,
	"pennsylvania":  Northeast,

	"illinois":     Midwest,
	"indiana":      Midwest,
	"michigan":     Midwest,
	"ohio":         Midwest,
	"wisconsin":    Midwest,
	"iowa":         Midwest,
	"kansas":       Midwest,
	"minnesota":    Midwest,
	"missouri":     Midwest,
	"nebraska":     Midwest,
	"north dakota": Midwest,
	"south dakota": Midwest,

	"delaware":             South,
	"florida":              South,
	"georgia":              South,
	"maryland":             South,
	"north carolina":       South,
	"south carolina":       South,
	"virginia":             South,
	"west virginia":        South,
	"district of columbia": South,
	"alabama":              South,
	"kentucky":             South,
	"mississippi":          South,
	"tennessee":            South,
	"arkansas":             South,
	"louisiana":            South,
	"oklahoma":             South,
	"texas":                South,

	"arizona":    West,
	"colorado":   West,
	"idaho":      West,
	"montana":    West,
	"nevada":     West,
	"new mexico": West,
	"utah":       West,
	"wyoming":    West,
	"alaska":     West,
	"california": West,
	"hawaii":     West,
	"oregon":     West,
	"washington": West,
}

// FromState resolves a cohort state to its region. The mapping is total:
// anything outside the table, including the empty string, resolves to
// Nationwide.
func FromState(state string) string {
	key := strings.ToLower(strings.TrimSpace(state))
	if region, ok := stateRegions[key]; ok {
		return region
	}
	return Nationwide
}

// All returns the four region names in header order, without Nationwide
func All() []string {
	return []string{Northeast, Midwest, South, West}
}
