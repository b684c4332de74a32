package dataloader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
)

type stubFetcher struct {
	texts map[string]string
	errs  map[string]error
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err, ok := s.errs[rawURL]; ok {
		return "", err
	}
	return s.texts[rawURL], nil
}

func (s *stubFetcher) FetchPair(ctx context.Context, primaryURL, referenceURL string) (string, string, bool, error) {
	primary, err := s.Fetch(ctx, primaryURL)
	if err != nil {
		return "", "", false, err
	}
	if referenceURL == "" {
		return primary, "", false, nil
	}
	reference, err := s.Fetch(ctx, referenceURL)
	if err != nil {
		return primary, "", true, nil
	}
	return primary, reference, false, nil
}

func newTestLoader(fetcher Fetcher, cfg Config) *DataLoader {
	return New(fetcher, cfg, zerolog.Nop())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2025-06-02", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"06/02/2025", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"6/2/2025", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"2025/06/02", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"Jun 2, 2025", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"2 Jun 2025", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"not a date", time.Time{}},
		{"", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseDate(tt.input)
			if !result.Equal(tt.expected) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"50.00", 50.00, true},
		{"$1,234.56", 1234.56, true},
		{"-25.50", -25.50, true},
		{"(100.00)", -100.00, true},
		{"($75.25)", -75.25, true},
		{" 12 ", 12, true},
		{"", 0, false},
		{"   ", 0, false},
		{"twelve", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, ok := parseAmount(tt.input)
			if ok != tt.ok || result != tt.expected {
				t.Errorf("parseAmount(%q) = (%v, %v), want (%v, %v)", tt.input, result, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestParseOptionalFloat(t *testing.T) {
	if v := parseOptionalFloat("1500.00"); v == nil || *v != 1500.00 {
		t.Errorf("parseOptionalFloat(\"1500.00\") = %v, want pointer to 1500", v)
	}
	if v := parseOptionalFloat(""); v != nil {
		t.Errorf("parseOptionalFloat(\"\") = %v, want nil", v)
	}
	if v := parseOptionalFloat("n/a"); v != nil {
		t.Errorf("parseOptionalFloat(\"n/a\") = %v, want nil", v)
	}
}

func TestLoadTransactions(t *testing.T) {
	csv := "id,location,purchase_date,purchase_amount,purchase_type,balance,income_weekly\n" +
		"user-001,Texas,2025-06-02,50.00,Food,1200.50,2000\n" +
		"user-002,Ohio,2025-06-03,$1,Utilities,,\n" +
		"user-003,Maine,not-a-date,10.00,Food,,\n" +
		"user-004,Iowa,2025-06-04,not-a-number,Food,,\n"

	fetcher := &stubFetcher{texts: map[string]string{"primary.csv": csv}}
	loader := newTestLoader(fetcher, Config{PrimaryURL: "primary.csv"})

	set, err := loader.LoadTransactions(context.Background())
	if err != nil {
		t.Fatalf("LoadTransactions() error = %v", err)
	}

	// Malformed date and amount rows dropped.
	if set.Len() != 2 {
		t.Fatalf("LoadTransactions() loaded %d rows, want 2", set.Len())
	}

	first := set.Transactions[0]
	if first.EntityID != "user-001" || first.State != "Texas" || first.Category != "Food" {
		t.Errorf("first row = %+v, want user-001/Texas/Food", first)
	}
	if first.Amount != 50.00 {
		t.Errorf("first row amount = %v, want 50.00", first.Amount)
	}
	if first.Balance == nil || *first.Balance != 1200.50 {
		t.Errorf("first row balance = %v, want 1200.50", first.Balance)
	}
	if first.WeeklyIncome == nil || *first.WeeklyIncome != 2000 {
		t.Errorf("first row weekly income = %v, want 2000", first.WeeklyIncome)
	}

	second := set.Transactions[1]
	if second.Balance != nil || second.WeeklyIncome != nil || second.YearlyIncome != nil {
		t.Errorf("second row optional figures = %+v, want all nil", second)
	}
}

func TestLoadTransactionsEmptyInput(t *testing.T) {
	fetcher := &stubFetcher{texts: map[string]string{"primary.csv": "\n\n"}}
	loader := newTestLoader(fetcher, Config{PrimaryURL: "primary.csv"})

	_, err := loader.LoadTransactions(context.Background())
	var emptyErr *EmptyInputError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("LoadTransactions() error = %v, want *EmptyInputError", err)
	}
}

func TestLoadPair(t *testing.T) {
	fetcher := &stubFetcher{texts: map[string]string{
		"primary.csv":   "id,location,purchase_date,purchase_amount,purchase_type\nuser-001,Texas,2025-06-02,50.00,Food\n",
		"reference.csv": "Category,United States Mean (Weekly $)\nGroceries,104.75\n",
	}}
	loader := newTestLoader(fetcher, Config{PrimaryURL: "primary.csv", ReferenceURL: "reference.csv"})

	set, reference, degraded, err := loader.LoadPair(context.Background())
	if err != nil {
		t.Fatalf("LoadPair() error = %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("LoadPair() loaded %d rows, want 1", set.Len())
	}
	if reference == "" {
		t.Error("LoadPair() reference text empty, want CSV body")
	}
	if degraded {
		t.Error("LoadPair() degraded = true, want false")
	}
}

func TestLoadPairDegradedReference(t *testing.T) {
	fetcher := &stubFetcher{
		texts: map[string]string{
			"primary.csv": "id,location,purchase_date,purchase_amount,purchase_type\nuser-001,Texas,2025-06-02,50.00,Food\n",
		},
		errs: map[string]error{"reference.csv": errors.New("unreachable")},
	}
	loader := newTestLoader(fetcher, Config{PrimaryURL: "primary.csv", ReferenceURL: "reference.csv"})

	set, reference, degraded, err := loader.LoadPair(context.Background())
	if err != nil {
		t.Fatalf("LoadPair() error = %v, reference failure must not be fatal", err)
	}
	if set.Len() != 1 {
		t.Errorf("LoadPair() loaded %d rows, want 1", set.Len())
	}
	if reference != "" || !degraded {
		t.Errorf("LoadPair() = (ref %q, degraded %v), want empty reference and degraded", reference, degraded)
	}
}

func TestLoadPairPrimaryFailure(t *testing.T) {
	fetcher := &stubFetcher{errs: map[string]error{"primary.csv": errors.New("unreachable")}}
	loader := newTestLoader(fetcher, Config{PrimaryURL: "primary.csv"})

	if _, _, _, err := loader.LoadPair(context.Background()); err == nil {
		t.Fatal("LoadPair() expected error when the primary fetch fails")
	}
}

func TestLoadUsers(t *testing.T) {
	csv := "username,password,id\nalice,secret,user-001\nbob,hunter2,\n,ignored,user-003\n"
	fetcher := &stubFetcher{texts: map[string]string{"users.csv": csv}}
	loader := newTestLoader(fetcher, Config{UsersURL: "users.csv"})

	users, err := loader.LoadUsers(context.Background())
	if err != nil {
		t.Fatalf("LoadUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("LoadUsers() returned %d users, want 2", len(users))
	}
	if users[0].Username != "alice" || users[0].EntityID != "user-001" {
		t.Errorf("first user = %+v, want alice/user-001", users[0])
	}
	// Missing id falls back to the username.
	if users[1].Username != "bob" || users[1].EntityID != "bob" {
		t.Errorf("second user = %+v, want bob/bob", users[1])
	}
}

func TestLoadUsersUnconfigured(t *testing.T) {
	loader := newTestLoader(&stubFetcher{}, Config{})

	users, err := loader.LoadUsers(context.Background())
	if err != nil {
		t.Fatalf("LoadUsers() error = %v", err)
	}
	if users != nil {
		t.Errorf("LoadUsers() = %v, want nil for unconfigured URL", users)
	}
}

func TestEntityProfile(t *testing.T) {
	balance := 1200.50
	weekly := 2000.0
	set := models.NewTransactionSet([]models.Transaction{
		{EntityID: "user-001", State: "Texas", Balance: &balance, WeeklyIncome: &weekly},
		{EntityID: "user-002", State: "Ohio"},
		{EntityID: "user-001", State: "Georgia"}, // later rows never shadow the first
	})

	profile, err := EntityProfile(set, "user-001")
	if err != nil {
		t.Fatalf("EntityProfile() error = %v", err)
	}
	if profile.State != "Texas" {
		t.Errorf("profile state = %q, want %q (first row wins)", profile.State, "Texas")
	}
	if profile.Balance == nil || *profile.Balance != 1200.50 {
		t.Errorf("profile balance = %v, want 1200.50", profile.Balance)
	}
	if profile.WeeklyIncome == nil || *profile.WeeklyIncome != 2000 {
		t.Errorf("profile weekly income = %v, want 2000", profile.WeeklyIncome)
	}
}

func TestEntityProfileNotFound(t *testing.T) {
	set := models.NewTransactionSet([]models.Transaction{{EntityID: "user-001"}})

	_, err := EntityProfile(set, "user-999")
	var notFound *EntityNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("EntityProfile() error = %v, want *EntityNotFoundError", err)
	}
	if notFound.EntityID != "user-999" {
		t.Errorf("EntityNotFoundError.EntityID = %q, want %q", notFound.EntityID, "user-999")
	}
}
