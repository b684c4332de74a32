// Package dashboard serves the weekly spending dashboard API: the chart
// payload with individual, cohort-average and regional-reference series,
// the category list, and per-entity saved preferences.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Jayden-Richmond/Radius-Finance/internal/handlers/auth"
	httpx "github.com/Jayden-Richmond/Radius-Finance/internal/http"
	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
	"github.com/Jayden-Richmond/Radius-Finance/internal/repository"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/aggregate"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/dataloader"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/fetch"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/income"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/metrics"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/reference"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/regions"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/weeks"
)

// PreferenceStore is the slice of the repository the dashboard needs.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, entityID string) (*models.Preferences, error)
	SavePreferences(ctx context.Context, p *models.Preferences) error
}

// Config tunes the dashboard handlers.
type Config struct {
	// DefaultWeeks is the trailing window when the request names neither
	// weeks nor a date range. Zero means 6.
	DefaultWeeks int
}

var (
	loader       *dataloader.DataLoader
	prefs        PreferenceStore
	summarizer   *metrics.Service
	defaultWeeks int
	logger       zerolog.Logger
	guard        *renderGuard
)

// Initialize sets the package dependencies. Call before RegisterRoutes.
func Initialize(l *dataloader.DataLoader, store PreferenceStore, m *metrics.Service, c Config, log zerolog.Logger) {
	loader = l
	prefs = store
	summarizer = m
	defaultWeeks = c.DefaultWeeks
	if defaultWeeks < 1 {
		defaultWeeks = 6
	}
	logger = log
	guard = newRenderGuard()
}

// RegisterRoutes registers the dashboard routes on the given router.
func RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/spending", handleSpending)
	r.Get("/dashboard/categories", handleCategories)
	r.Get("/preferences", handleGetPreferences)
	r.Put("/preferences", handlePutPreferences)
}

// handleSpending builds the spending chart for the signed-in entity.
// Window selection: ?start=&end= (bounded range) beats ?weeks=N (trailing,
// default 6). ?categories= restricts the engine to the listed categories;
// present-but-empty means everything is deselected.
func handleSpending(w http.ResponseWriter, r *http.Request) {
	entityID := auth.EntityID(r.Context())
	if entityID == "" {
		httpx.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	selected := httpx.ParseCategories(q, "categories")

	start, end, err := httpx.ParseDateRange(q.Get("start"), q.Get("end"))
	if err != nil {
		httpx.Error(w, "dates must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var labels []string
	if !start.IsZero() && !end.IsZero() {
		labels = weeks.InRange(start, end)
	} else {
		n := httpx.QueryInt(q, "weeks", defaultWeeks)
		if n < 1 {
			n = defaultWeeks
		}
		labels = weeks.Trailing(n, time.Now())
	}

	// Latest render wins: starting this one cancels any in-flight
	// predecessor for the same entity, and a result that is no longer
	// newest when it completes gets discarded.
	ctx, finish := guard.begin(r.Context(), entityID)
	data, err := buildSpending(ctx, entityID, labels, selected)
	if !finish() {
		err = ErrSuperseded
	}
	if err != nil {
		respondSpendingError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

// buildSpending runs the aggregation pipeline for one render.
func buildSpending(ctx context.Context, entityID string, labels, selected []string) (*models.SpendingData, error) {
	set, refText, degraded, err := loader.LoadPair(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := dataloader.EntityProfile(set, entityID)
	if err != nil {
		return nil, err
	}
	region := regions.FromState(profile.State)

	data := &models.SpendingData{Weeks: labels, Degraded: degraded}

	// Everything deselected: both series render as zeros and the engine
	// never runs. The reference line is suppressed with them.
	if selected != nil && len(selected) == 0 {
		zero := aggregate.ZeroSeries(labels)
		data.Chart = buildChart(labels, zero, aggregate.ZeroSeries(labels), profile.State, nil, "")
		data.Summary = summarizer.Summarize(profile, nil, labels, 1, false)
		return data, nil
	}

	res := aggregate.Filtered(set.Transactions, entityID, selected)
	individual := aggregate.Project(res.Target, labels)
	cohort := res.CohortAverage(profile.State, labels)

	individualIncome, _ := income.EntityWeekly(profile.WeeklyIncome, profile.YearlyIncome)
	cohortIncome, _ := income.CohortAverageWeekly(set.Transactions, region)
	scale := income.ScaleFactor(individualIncome, cohortIncome)

	var table *reference.Table
	if refText != "" {
		table, err = reference.Load(refText)
		if err != nil {
			logger.Warn().Err(err).Msg("reference table unusable; rendering without it")
			table = nil
			data.Degraded = true
		}
	}

	var refSeries []float64
	refName := ""
	referenceUsed := false
	if table != nil {
		query := selected
		if query == nil {
			query = set.Categories()
		}
		value, matched, err := table.Value(query, region)
		if err != nil {
			// No category matched the table; the line is suppressed
			// rather than drawn at zero.
			var nm *reference.NoMatchError
			if !errors.As(err, &nm) {
				return nil, err
			}
		} else {
			flat := aggregate.Round2(value * scale)
			refSeries = flatSeries(flat, len(labels))
			refName = region + " reference"
			referenceUsed = true
			logger.Debug().
				Int("matched", matched).
				Float64("value", flat).
				Str("region", region).
				Msg("reference line resolved")
		}
	}

	data.Chart = buildChart(labels, individual, cohort, profile.State, refSeries, refName)
	data.Summary = summarizer.Summarize(profile, res.Target, labels, scale, referenceUsed)
	return data, nil
}

// buildChart assembles the Plotly-style payload. refSeries may be nil.
func buildChart(labels []string, individual, cohort []float64, state string, refSeries []float64, refName string) models.ChartResponse {
	series := []models.ChartData{
		{
			Type: "scatter",
			Mode: "lines+markers",
			Name: "Your weekly spending",
			X:    labels,
			Y:    individual,
		},
		{
			Type: "scatter",
			Mode: "lines+markers",
			Name: state + " average",
			X:    labels,
			Y:    cohort,
		},
	}
	if refSeries != nil {
		series = append(series, models.ChartData{
			Type: "scatter",
			Mode: "lines",
			Name: refName + " (income-adjusted)",
			X:    labels,
			Y:    refSeries,
			Line: map[string]interface{}{"dash": "dash"},
		})
	}
	return models.ChartResponse{
		Data: series,
		Layout: models.ChartLayout{
			Title:      "Weekly Spending",
			XAxisTitle: "Week of",
			YAxisTitle: "Spend ($)",
			ShowLegend: true,
		},
	}
}

func flatSeries(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func respondSpendingError(w http.ResponseWriter, err error) {
	var notFound *dataloader.EntityNotFoundError
	var empty *dataloader.EmptyInputError
	var transport *fetch.TransportError

	switch {
	case errors.Is(err, ErrSuperseded):
		httpx.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &notFound):
		httpx.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &empty):
		httpx.Error(w, "dataset is empty", http.StatusBadGateway)
	case errors.As(err, &transport):
		httpx.Error(w, "dataset unavailable", http.StatusBadGateway)
	default:
		logger.Error().Err(err).Msg("spending render failed")
		httpx.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// handleCategories returns the distinct categories of the dataset, sorted.
func handleCategories(w http.ResponseWriter, r *http.Request) {
	set, err := loader.LoadTransactions(r.Context())
	if err != nil {
		respondSpendingError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"categories": set.Categories(),
	})
}

// handleGetPreferences returns the entity's saved preferences, or the
// defaults when nothing has been saved yet.
func handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	entityID := auth.EntityID(r.Context())
	if entityID == "" {
		httpx.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	p, err := prefs.GetPreferences(r.Context(), entityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.JSON(w, http.StatusOK, models.DefaultPreferences(entityID))
			return
		}
		logger.Error().Err(err).Msg("loading preferences")
		httpx.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type preferencesRequest struct {
	Categories []string `json:"categories"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
}

// handlePutPreferences saves the entity's category selection and date
// range. A null/absent categories field means "all categories"; an empty
// list means everything deselected, and both round-trip as sent.
func handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	entityID := auth.EntityID(r.Context())
	if entityID == "" {
		httpx.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if _, _, err := httpx.ParseDateRange(req.StartDate, req.EndDate); err != nil {
		httpx.Error(w, "dates must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	p := &models.Preferences{
		EntityID:   entityID,
		Categories: req.Categories,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := prefs.SavePreferences(r.Context(), p); err != nil {
		logger.Error().Err(err).Msg("saving preferences")
		httpx.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
