package metrics

import (
	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/aggregate"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/dataloader"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/income"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/regions"
)

// Service resolves the display figures for the signed-in entity.
type Service struct{}

// New creates a new metrics service
func New() *Service {
	return &Service{}
}

// Summarize builds the summary block for a rendered window: the entity's
// cohort and region, the figures carried on its rows, and the spend total
// across the rendered weeks.
func (s *Service) Summarize(profile dataloader.Profile, target aggregate.WeeklyTotals, weekLabels []string, scaleFactor float64, referenceUsed bool) models.Summary {
	var total float64
	for _, label := range weekLabels {
		total += target[label]
	}

	summary := models.Summary{
		EntityID:      profile.EntityID,
		State:         profile.State,
		Region:        regions.FromState(profile.State),
		Balance:       profile.Balance,
		TotalSpend:    aggregate.Round2(total),
		WeekCount:     len(weekLabels),
		ScaleFactor:   scaleFactor,
		ReferenceUsed: referenceUsed,
	}

	if weekly, ok := income.EntityWeekly(profile.WeeklyIncome, profile.YearlyIncome); ok {
		rounded := aggregate.Round2(weekly)
		summary.WeeklyIncome = &rounded
	}

	return summary
}
