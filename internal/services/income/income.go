// Package income derives weekly income figures and the scale factor that
// adjusts regional reference values to an individual's earnings.
package income

import (
	"math"

	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/regions"
)

// EntityWeekly resolves an entity's weekly income from its row figures:
// the explicit weekly figure when present and non-zero, else yearly/52.
// ok is false when neither resolves.
func EntityWeekly(weekly, yearly *float64) (float64, bool) {
	if weekly != nil && *weekly != 0 {
		return *weekly, true
	}
	if yearly != nil && *yearly != 0 {
		return *yearly / 52, true
	}
	return 0, false
}

// CohortAverageWeekly returns the mean weekly income across the region's
// entities. Rows are deduplicated by entity with the first occurrence
// winning; entities whose cohort resolves elsewhere or whose income cannot
// be derived are skipped. ok is false when no entity survives.
func CohortAverageWeekly(rows []models.Transaction, region string) (float64, bool) {
	seen := make(map[string]bool)
	var sum float64
	count := 0

	for _, row := range rows {
		if seen[row.EntityID] {
			continue
		}
		seen[row.EntityID] = true

		if regions.FromState(row.State) != region {
			continue
		}
		weekly, ok := EntityWeekly(row.WeeklyIncome, row.YearlyIncome)
		if !ok {
			continue
		}
		sum += weekly
		count++
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// ScaleFactor returns individual/cohortAvg when both figures are finite
// and strictly positive, and exactly 1 otherwise — no adjustment rather
// than a degenerate multiplier.
func ScaleFactor(individual, cohortAvg float64) float64 {
	if !isFinite(individual) || !isFinite(cohortAvg) {
		return 1
	}
	if individual <= 0 || cohortAvg <= 0 {
		return 1
	}
	return individual / cohortAvg
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
