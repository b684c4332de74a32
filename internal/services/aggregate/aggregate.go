// Package aggregate builds the weekly spending structures behind the
// dashboard charts: per-entity weekly totals, per-cohort rosters, cohort
// averages, and week-aligned series.
package aggregate

import (
	"math"
	"strings"

	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/weeks"
)

// WeeklyTotals maps a week label to the summed amount for that bucket
type WeeklyTotals map[string]float64

// Result holds one pass over the dataset: the target entity's totals plus
// every cohort's per-entity totals. A fresh Result is built per rendering
// invocation; nothing here is shared or mutated afterwards.
type Result struct {
	Target  WeeklyTotals
	Cohorts map[string]map[string]WeeklyTotals // cohort -> entity -> totals
}

// All aggregates every row with no category restriction. This is the
// canonical full-dataset pass.
func All(rows []models.Transaction, targetEntityID string) *Result {
	return Filtered(rows, targetEntityID, nil)
}

// Filtered aggregates in a single pass, keeping only rows whose category is
// in allowed. A nil allowed set means unrestricted; an empty non-nil set
// matches nothing — callers showing "no categories selected" should render
// ZeroSeries instead of invoking the engine at all.
func Filtered(rows []models.Transaction, targetEntityID string, allowed []string) *Result {
	var allowedSet map[string]bool
	if allowed != nil {
		allowedSet = make(map[string]bool, len(allowed))
		for _, c := range allowed {
			allowedSet[strings.ToLower(c)] = true
		}
	}

	r := &Result{
		Target:  make(WeeklyTotals),
		Cohorts: make(map[string]map[string]WeeklyTotals),
	}

	for _, row := range rows {
		if allowedSet != nil && !allowedSet[strings.ToLower(row.Category)] {
			continue
		}

		label := weeks.StartLabel(row.Date)

		if row.EntityID == targetEntityID {
			r.Target[label] += row.Amount
		}

		cohort := r.Cohorts[row.State]
		if cohort == nil {
			cohort = make(map[string]WeeklyTotals)
			r.Cohorts[row.State] = cohort
		}
		entity := cohort[row.EntityID]
		if entity == nil {
			entity = make(WeeklyTotals)
			cohort[row.EntityID] = entity
		}
		entity[label] += row.Amount
	}

	return r
}

// CohortAverage returns the cohort's mean weekly spend over the given week
// sequence. An entity recorded for the cohort contributes 0 for weeks it
// has no transactions but still counts in the divisor; a cohort with no
// recorded entities averages to 0 for every week.
func (r *Result) CohortAverage(cohort string, weekLabels []string) []float64 {
	entities := r.Cohorts[cohort]
	series := make([]float64, len(weekLabels))
	if len(entities) == 0 {
		return series
	}

	for i, label := range weekLabels {
		var sum float64
		for _, totals := range entities {
			sum += totals[label]
		}
		series[i] = Round2(sum / float64(len(entities)))
	}
	return series
}

// Project maps a week sequence onto totals, substituting 0 for weeks with
// no entry, every value rounded to cents.
func Project(totals WeeklyTotals, weekLabels []string) []float64 {
	series := make([]float64, len(weekLabels))
	for i, label := range weekLabels {
		series[i] = Round2(totals[label])
	}
	return series
}

// ZeroSeries is the series an empty category selection renders: all zeros,
// one per week. Selecting no categories means "show nothing", never "show
// everything".
func ZeroSeries(weekLabels []string) []float64 {
	return make([]float64, len(weekLabels))
}

// Round2 rounds to the hundredths place, halves away from zero, matching
// currency display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
