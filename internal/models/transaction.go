package models

import (
	"sort"
	"strings"
	"time"
)

// Transaction represents a single purchase row from the primary dataset
type Transaction struct {
	EntityID string    `json:"entity_id"`
	State    string    `json:"state"` // cohort key, e.g. "Texas"
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`

	// Optional per-entity figures carried on rows; nil when the source
	// column is absent or blank
	Balance      *float64 `json:"balance,omitempty"`
	WeeklyIncome *float64 `json:"weekly_income,omitempty"`
	YearlyIncome *float64 `json:"yearly_income,omitempty"`
}

// TransactionSet wraps a slice with filtering/aggregation methods
type TransactionSet struct {
	Transactions []Transaction
}

// NewTransactionSet creates a new TransactionSet from a slice
func NewTransactionSet(transactions []Transaction) *TransactionSet {
	return &TransactionSet{Transactions: transactions}
}

// Len returns the number of transactions
func (ts *TransactionSet) Len() int {
	return len(ts.Transactions)
}

// FilterByEntity returns transactions belonging to the given entity
func (ts *TransactionSet) FilterByEntity(entityID string) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if t.EntityID == entityID {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByState returns transactions whose cohort state matches
func (ts *TransactionSet) FilterByState(state string) *TransactionSet {
	result := &TransactionSet{}
	stateLower := strings.ToLower(state)
	for _, t := range ts.Transactions {
		if strings.ToLower(t.State) == stateLower {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByCategory returns transactions matching the category
func (ts *TransactionSet) FilterByCategory(category string) *TransactionSet {
	result := &TransactionSet{}
	catLower := strings.ToLower(category)
	for _, t := range ts.Transactions {
		if strings.ToLower(t.Category) == catLower {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByCategories returns transactions whose category is in the given
// set. An empty set yields an empty result, not the full set.
func (ts *TransactionSet) FilterByCategories(categories []string) *TransactionSet {
	result := &TransactionSet{}
	if len(categories) == 0 {
		return result
	}
	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[strings.ToLower(c)] = true
	}
	for _, t := range ts.Transactions {
		if allowed[strings.ToLower(t.Category)] {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByDateRange returns transactions within the date range (inclusive)
func (ts *TransactionSet) FilterByDateRange(start, end time.Time) *TransactionSet {
	result := &TransactionSet{}
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, end.Location())

	for _, t := range ts.Transactions {
		if !t.Date.Before(startDay) && !t.Date.After(endDay) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// SumAmount returns the sum of all transaction amounts
func (ts *TransactionSet) SumAmount() float64 {
	var sum float64
	for _, t := range ts.Transactions {
		sum += t.Amount
	}
	return sum
}

// SortByDate sorts transactions by date (ascending)
func (ts *TransactionSet) SortByDate() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &TransactionSet{Transactions: sorted}
}

// SortByDateDesc sorts transactions by date (descending)
func (ts *TransactionSet) SortByDateDesc() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return &TransactionSet{Transactions: sorted}
}

// MinDate returns the earliest transaction date
func (ts *TransactionSet) MinDate() time.Time {
	if len(ts.Transactions) == 0 {
		return time.Time{}
	}
	minDate := ts.Transactions[0].Date
	for _, t := range ts.Transactions[1:] {
		if t.Date.Before(minDate) {
			minDate = t.Date
		}
	}
	return minDate
}

// MaxDate returns the latest transaction date
func (ts *TransactionSet) MaxDate() time.Time {
	if len(ts.Transactions) == 0 {
		return time.Time{}
	}
	maxDate := ts.Transactions[0].Date
	for _, t := range ts.Transactions[1:] {
		if t.Date.After(maxDate) {
			maxDate = t.Date
		}
	}
	return maxDate
}

// Categories returns a sorted list of unique categories
func (ts *TransactionSet) Categories() []string {
	catMap := make(map[string]bool)
	for _, t := range ts.Transactions {
		cat := t.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		catMap[cat] = true
	}

	cats := make([]string, 0, len(catMap))
	for cat := range catMap {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// Entities returns a sorted list of unique entity identifiers
func (ts *TransactionSet) Entities() []string {
	idMap := make(map[string]bool)
	for _, t := range ts.Transactions {
		idMap[t.EntityID] = true
	}

	ids := make([]string, 0, len(idMap))
	for id := range idMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Paginate returns a slice of transactions for the given page
func (ts *TransactionSet) Paginate(page, perPage int) *TransactionSet {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	start := (page - 1) * perPage
	if start >= len(ts.Transactions) {
		return &TransactionSet{}
	}

	end := start + perPage
	if end > len(ts.Transactions) {
		end = len(ts.Transactions)
	}

	return &TransactionSet{Transactions: ts.Transactions[start:end]}
}

// TotalPages returns the number of pages for the given page size
func (ts *TransactionSet) TotalPages(perPage int) int {
	if perPage < 1 {
		perPage = 25
	}
	return (len(ts.Transactions) + perPage - 1) / perPage
}

// Copy creates a shallow copy of the TransactionSet
func (ts *TransactionSet) Copy() *TransactionSet {
	copied := make([]Transaction, len(ts.Transactions))
	copy(copied, ts.Transactions)
	return &TransactionSet{Transactions: copied}
}
