// Package weeks buckets calendar dates into Monday-start weeks and
// generates the ordered week-label sequences used as chart axes.
package weeks

import "time"

// MaxRangeWeeks caps InRange output; ten years of weeks is more than any
// dataset here spans, and it keeps a bad date pair from generating an
// unbounded axis.
const MaxRangeWeeks = 520

// LabelFormat is the canonical week-label layout, the ISO date of the
// bucket's Monday.
const LabelFormat = "2006-01-02"

// Start returns the Monday at or before t, normalized to midnight.
// Bucketing is a pure function of the date: equal dates always land in the
// same bucket.
func Start(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday -> 7
	}
	daysToSubtract := weekday - 1
	return time.Date(t.Year(), t.Month(), t.Day()-daysToSubtract, 0, 0, 0, 0, t.Location())
}

// Label formats a time as a week label. Pass a bucketed time; for an
// arbitrary date use StartLabel.
func Label(t time.Time) string {
	return t.Format(LabelFormat)
}

// StartLabel returns the week label of the bucket containing t
func StartLabel(t time.Time) string {
	return Label(Start(t))
}

// Trailing returns the n week labels ending at Start(ref), oldest first,
// each exactly 7 days after the previous
func Trailing(n int, ref time.Time) []string {
	if n <= 0 {
		return nil
	}
	labels := make([]string, n)
	current := Start(ref).AddDate(0, 0, -7*(n-1))
	for i := 0; i < n; i++ {
		labels[i] = Label(current)
		current = current.AddDate(0, 0, 7)
	}
	return labels
}

// InRange returns every week label from Start(start) to Start(end)
// inclusive, stepping 7 days. The pair is swapped when start buckets later
// than end, and output is truncated at MaxRangeWeeks.
func InRange(start, end time.Time) []string {
	a := Start(start)
	b := Start(end)
	if a.After(b) {
		a, b = b, a
	}

	var labels []string
	for current := a; !current.After(b); current = current.AddDate(0, 0, 7) {
		labels = append(labels, Label(current))
		if len(labels) >= MaxRangeWeeks {
			break
		}
	}
	return labels
}
