package dataloader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
)

// Fetcher retrieves dataset text by URL. Satisfied by the resource fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
	FetchPair(ctx context.Context, primaryURL, referenceURL string) (primary, reference string, degraded bool, err error)
}

// EntityNotFoundError reports an entity id that has no rows in the
// primary dataset.
type EntityNotFoundError struct {
	EntityID string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %q not found in dataset", e.EntityID)
}

// Config names the dataset resources a DataLoader works from.
type Config struct {
	// PrimaryURL locates the transaction dataset. Required.
	PrimaryURL string

	// ReferenceURL locates the regional reference dataset. Optional; empty
	// disables reference lines.
	ReferenceURL string

	// UsersURL locates the demo credential dataset. Optional.
	UsersURL string
}

// DataLoader fetches and parses the demo datasets into model types.
type DataLoader struct {
	fetcher Fetcher
	cfg     Config
	logger  zerolog.Logger
}

// New creates a DataLoader over the given fetcher and resource URLs.
func New(fetcher Fetcher, cfg Config, logger zerolog.Logger) *DataLoader {
	return &DataLoader{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

// LoadTransactions fetches and parses the primary dataset.
func (dl *DataLoader) LoadTransactions(ctx context.Context) (*models.TransactionSet, error) {
	text, err := dl.fetcher.Fetch(ctx, dl.cfg.PrimaryURL)
	if err != nil {
		return nil, err
	}

	table, err := ParseTable(text)
	if err != nil {
		return nil, err
	}

	return models.NewTransactionSet(dl.parseTransactions(table)), nil
}

// LoadPair fetches the primary and reference datasets concurrently and
// parses the primary. The reference comes back as raw text (empty when the
// reference leg was skipped or degraded) for the caller to interpret.
func (dl *DataLoader) LoadPair(ctx context.Context) (*models.TransactionSet, string, bool, error) {
	primary, reference, degraded, err := dl.fetcher.FetchPair(ctx, dl.cfg.PrimaryURL, dl.cfg.ReferenceURL)
	if err != nil {
		return nil, "", false, err
	}

	table, err := ParseTable(primary)
	if err != nil {
		return nil, "", false, err
	}

	return models.NewTransactionSet(dl.parseTransactions(table)), reference, degraded, nil
}

// LoadUsers fetches the demo credential dataset. An unconfigured URL
// yields no users without error.
func (dl *DataLoader) LoadUsers(ctx context.Context) ([]models.User, error) {
	if dl.cfg.UsersURL == "" {
		return nil, nil
	}

	text, err := dl.fetcher.Fetch(ctx, dl.cfg.UsersURL)
	if err != nil {
		return nil, err
	}

	table, err := ParseTable(text)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(table.Rows))
	for _, row := range table.Rows {
		username := strings.TrimSpace(row["username"])
		if username == "" {
			continue
		}

		entityID := strings.TrimSpace(row["id"])
		if entityID == "" {
			entityID = username
		}

		users = append(users, models.User{
			Username: username,
			Password: strings.TrimSpace(row["password"]),
			EntityID: entityID,
		})
	}

	return users, nil
}

// Profile is the entity-level information carried on dataset rows.
type Profile struct {
	EntityID     string
	State        string
	Balance      *float64
	WeeklyIncome *float64
	YearlyIncome *float64
}

// EntityProfile resolves an entity's cohort and figures from its first row
// in dataset order.
func EntityProfile(set *models.TransactionSet, entityID string) (Profile, error) {
	for _, t := range set.Transactions {
		if t.EntityID != entityID {
			continue
		}
		return Profile{
			EntityID:     t.EntityID,
			State:        t.State,
			Balance:      t.Balance,
			WeeklyIncome: t.WeeklyIncome,
			YearlyIncome: t.YearlyIncome,
		}, nil
	}

	return Profile{}, &EntityNotFoundError{EntityID: entityID}
}

// parseTransactions maps parsed rows onto Transactions. Rows whose date or
// amount cannot be parsed are skipped with a debug log; optional figures
// come through as nil when blank or malformed.
func (dl *DataLoader) parseTransactions(table *Table) []models.Transaction {
	transactions := make([]models.Transaction, 0, len(table.Rows))

	for i, row := range table.Rows {
		date := parseDate(strings.TrimSpace(row["purchase_date"]))
		if date.IsZero() {
			dl.logger.Debug().
				Int("row", i+1).
				Str("purchase_date", row["purchase_date"]).
				Msg("skipping row with unparseable date")
			continue
		}

		amount, ok := parseAmount(row["purchase_amount"])
		if !ok {
			dl.logger.Debug().
				Int("row", i+1).
				Str("purchase_amount", row["purchase_amount"]).
				Msg("skipping row with unparseable amount")
			continue
		}

		transactions = append(transactions, models.Transaction{
			EntityID:     strings.TrimSpace(row["id"]),
			State:        strings.TrimSpace(row["location"]),
			Date:         date,
			Amount:       amount,
			Category:     strings.TrimSpace(row["purchase_type"]),
			Balance:      parseOptionalFloat(row["balance"]),
			WeeklyIncome: parseOptionalFloat(row["income_weekly"]),
			YearlyIncome: parseOptionalFloat(row["income_yearly"]),
		})
	}

	return transactions
}

// parseDate tries multiple date formats
func parseDate(s string) time.Time {
	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"1/2/2006",
		"01-02-2006",
		"2006/01/02",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

// parseAmount parses an amount string, handling currency symbols, thousands
// separators, and parentheses for negatives: (100.00) -> -100.00
func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 2 {
		s = "-" + s[1:len(s)-1]
	}
	if s == "" {
		return 0, false
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return amount, true
}

// parseOptionalFloat parses an optional numeric cell, nil when blank or
// malformed.
func parseOptionalFloat(s string) *float64 {
	v, ok := parseAmount(s)
	if !ok {
		return nil
	}
	return &v
}
