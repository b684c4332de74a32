package income

import (
	"math"
	"testing"

	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/regions"
)

func f(v float64) *float64 { return &v }

func incomeRow(id, state string, weekly, yearly *float64) models.Transaction {
	return models.Transaction{EntityID: id, State: state, WeeklyIncome: weekly, YearlyIncome: yearly}
}

func TestEntityWeekly(t *testing.T) {
	tests := []struct {
		name   string
		weekly *float64
		yearly *float64
		want   float64
		ok     bool
	}{
		{"explicit weekly", f(1500), f(52000), 1500, true},
		{"zero weekly falls back to yearly", f(0), f(5200), 100, true},
		{"yearly only", nil, f(2600), 50, true},
		{"zero yearly does not resolve", nil, f(0), 0, false},
		{"nothing resolves", nil, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EntityWeekly(tt.weekly, tt.yearly)
			if ok != tt.ok || got != tt.want {
				t.Errorf("EntityWeekly = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCohortAverageWeekly(t *testing.T) {
	rows := []models.Transaction{
		incomeRow("1", "Texas", f(1000), nil),
		incomeRow("2", "Georgia", nil, f(52000)), // 1000/week, also South
		incomeRow("3", "Ohio", f(9999), nil),     // Midwest, excluded
		incomeRow("4", "Texas", nil, nil),        // no income, skipped
	}

	avg, ok := CohortAverageWeekly(rows, regions.South)
	if !ok {
		t.Fatal("expected an average for South")
	}
	if avg != 1000 {
		t.Errorf("average = %v, want 1000", avg)
	}
}

func TestCohortAverageWeeklyFirstOccurrenceWins(t *testing.T) {
	rows := []models.Transaction{
		incomeRow("1", "Texas", f(1000), nil),
		incomeRow("1", "Texas", f(8000), nil), // duplicate entity, ignored
	}

	avg, ok := CohortAverageWeekly(rows, regions.South)
	if !ok || avg != 1000 {
		t.Errorf("average = (%v, %v), want (1000, true)", avg, ok)
	}
}

func TestCohortAverageWeeklyUnavailable(t *testing.T) {
	rows := []models.Transaction{
		incomeRow("1", "Texas", nil, nil),
		incomeRow("2", "Ohio", f(1000), nil), // wrong region
	}

	_, ok := CohortAverageWeekly(rows, regions.South)
	if ok {
		t.Error("expected unavailable average when no entity survives")
	}
}

func TestScaleFactor(t *testing.T) {
	tests := []struct {
		name       string
		individual float64
		cohortAvg  float64
		want       float64
	}{
		{"double the average", 2000, 1000, 2.0},
		{"half the average", 500, 1000, 0.5},
		{"zero average", 1000, 0, 1},
		{"zero individual", 0, 1000, 1},
		{"negative individual", -50, 1000, 1},
		{"nan individual", math.NaN(), 1000, 1},
		{"inf average", 1000, math.Inf(1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScaleFactor(tt.individual, tt.cohortAvg); got != tt.want {
				t.Errorf("ScaleFactor(%v, %v) = %v, want %v", tt.individual, tt.cohortAvg, got, tt.want)
			}
		})
	}
}
