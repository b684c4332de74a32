// Package explorer serves the transaction browsing API: the signed-in
// entity's rows with category and date filters, pagination, and a CSV
// export.
package explorer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Jayden-Richmond/Radius-Finance/internal/handlers/auth"
	httpx "github.com/Jayden-Richmond/Radius-Finance/internal/http"
	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/dataloader"
)

const (
	defaultPerPage = 25
	maxPerPage     = 500
)

var (
	loader *dataloader.DataLoader
	logger zerolog.Logger
)

// Initialize sets the package dependencies. Call before RegisterRoutes.
func Initialize(l *dataloader.DataLoader, log zerolog.Logger) {
	loader = l
	logger = log
}

// RegisterRoutes registers the explorer routes on the given router.
func RegisterRoutes(r chi.Router) {
	r.Get("/transactions", handleTransactions)
	r.Get("/transactions/export", handleExport)
}

var errBadDates = fmt.Errorf("dates must be YYYY-MM-DD")

// filteredRows loads the dataset and applies the entity scope plus the
// optional category and date filters, newest first.
func filteredRows(r *http.Request) (*models.TransactionSet, error) {
	entityID := auth.EntityID(r.Context())

	set, err := loader.LoadTransactions(r.Context())
	if err != nil {
		return nil, err
	}
	set = set.FilterByEntity(entityID)

	q := r.URL.Query()
	if categories := httpx.ParseCategories(q, "categories"); categories != nil {
		set = set.FilterByCategories(categories)
	}

	start, end, err := httpx.ParseDateRange(q.Get("start"), q.Get("end"))
	if err != nil {
		return nil, errBadDates
	}
	if !start.IsZero() || !end.IsZero() {
		if end.IsZero() {
			end = time.Now().AddDate(100, 0, 0)
		}
		set = set.FilterByDateRange(start, end)
	}

	return set.SortByDateDesc(), nil
}

func handleTransactions(w http.ResponseWriter, r *http.Request) {
	if auth.EntityID(r.Context()) == "" {
		httpx.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	set, err := filteredRows(r)
	if err != nil {
		respondListError(w, err)
		return
	}

	q := r.URL.Query()
	page := httpx.QueryInt(q, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := httpx.QueryInt(q, "per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	paged := set.Paginate(page, perPage)
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"transactions": paged.Transactions,
		"page":         page,
		"per_page":     perPage,
		"total":        set.Len(),
		"total_pages":  set.TotalPages(perPage),
	})
}

// handleExport streams the filtered rows as a CSV attachment.
func handleExport(w http.ResponseWriter, r *http.Request) {
	entityID := auth.EntityID(r.Context())
	if entityID == "" {
		httpx.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	set, err := filteredRows(r)
	if err != nil {
		respondListError(w, err)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write([]string{"Date", "Category", "Amount", "State"})
	for _, tx := range set.Transactions {
		writer.Write([]string{
			tx.Date.Format("2006-01-02"),
			tx.Category,
			fmt.Sprintf("%.2f", tx.Amount),
			tx.State,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		logger.Error().Err(err).Msg("building export")
		httpx.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("transactions_%s_%s.csv", entityID, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(buf.Bytes())
}

func respondListError(w http.ResponseWriter, err error) {
	if err == errBadDates {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.Error().Err(err).Msg("loading transactions")
	httpx.Error(w, "dataset unavailable", http.StatusBadGateway)
}
