// Package reference loads the regional spending reference table and
// resolves user categories against it. Category vocabularies differ between
// the dataset and the reference table, so lookup is by normalized-substring
// containment rather than equality.
package reference

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Jayden-Richmond/Radius-Finance/internal/services/dataloader"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/regions"
)

// MeanSuffix completes a region's column header, e.g.
// "South Mean (Weekly $)".
const MeanSuffix = " Mean (Weekly $)"

// Entry is one reference row: a category name and its weekly mean spend
// per region. Regions whose column was missing are absent from Means.
type Entry struct {
	Name  string
	Means map[string]float64
}

// NoMatchError reports a category selection with no reference-table match.
// It is never fatal: callers suppress the reference line and move on.
type NoMatchError struct {
	Selected []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no reference match for %d selected categories", len(e.Selected))
}

// Table holds the loaded reference entries. Matching iterates names in
// sorted order so that ties between containment candidates resolve the
// same way on every run.
type Table struct {
	entries map[string]Entry
	names   []string // sorted
	norms   map[string]string
	regions []string // sorted, as found in the headers
}

// Load parses reference CSV text. The item/category column is the first
// header that is not a "<Region> Mean (Weekly $)" column; cells that fail
// to parse as numbers become 0. An EmptyInputError from the parser
// propagates unchanged.
func Load(text string) (*Table, error) {
	parsed, err := dataloader.ParseTable(text)
	if err != nil {
		return nil, err
	}

	regionCols := make(map[string]string) // region -> header
	for _, region := range append([]string{regions.Nationwide}, regions.All()...) {
		header := region + MeanSuffix
		for _, h := range parsed.Headers {
			if h == header {
				regionCols[region] = header
				break
			}
		}
	}

	itemCol := ""
	for _, h := range parsed.Headers {
		if !strings.HasSuffix(h, MeanSuffix) {
			itemCol = h
			break
		}
	}
	if itemCol == "" {
		return nil, fmt.Errorf("reference table has no item column (headers: %v)", parsed.Headers)
	}

	t := &Table{
		entries: make(map[string]Entry),
		norms:   make(map[string]string),
	}
	for region := range regionCols {
		t.regions = append(t.regions, region)
	}
	sort.Strings(t.regions)

	for _, row := range parsed.Rows {
		name := strings.TrimSpace(row[itemCol])
		if name == "" {
			continue
		}

		means := make(map[string]float64, len(regionCols))
		for region, header := range regionCols {
			cell, ok := row[header]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				v = 0
			}
			means[region] = v
		}

		if _, exists := t.entries[name]; !exists {
			t.names = append(t.names, name)
			t.norms[name] = normalize(name)
		}
		t.entries[name] = Entry{Name: name, Means: means}
	}
	sort.Strings(t.names)

	return t, nil
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Names returns entry names in match order
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Regions returns the regions whose mean column was present in the table.
func (t *Table) Regions() []string {
	out := make([]string, len(t.regions))
	copy(out, t.regions)
	return out
}

// Match resolves a user category against the table. Both sides are
// normalized (lowercased, non-alphanumerics stripped); the first name in
// sorted order whose normalized form equals, contains, or is contained by
// the normalized query wins.
func (t *Table) Match(query string) (Entry, bool) {
	nq := normalize(query)
	for _, name := range t.names {
		nk := t.norms[name]
		if strings.Contains(nk, nq) || strings.Contains(nq, nk) {
			return t.entries[name], true
		}
	}
	return Entry{}, false
}

// Value sums the regional weekly mean across every selected category that
// matches, falling back to the nationwide mean for entries missing the
// requested region. The match count lets callers distinguish "matched but
// zero" from "nothing matched"; when nothing matched the error is a
// NoMatchError and the reference line must be suppressed, not drawn at 0.
func (t *Table) Value(selected []string, region string) (float64, int, error) {
	var sum float64
	matched := 0

	for _, category := range selected {
		entry, ok := t.Match(category)
		if !ok {
			continue
		}
		matched++

		mean, ok := entry.Means[region]
		if !ok {
			mean = entry.Means[regions.Nationwide]
		}
		sum += mean
	}

	if matched == 0 {
		return 0, 0, &NoMatchError{Selected: selected}
	}
	return sum, matched, nil
}

// normalize lowercases and strips everything outside [a-z0-9]
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
