package http

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestParseCategories(t *testing.T) {
	t.Run("absent parameter means unrestricted", func(t *testing.T) {
		got := ParseCategories(url.Values{}, "categories")
		if got != nil {
			t.Errorf("expected nil for absent parameter, got %v", got)
		}
	})

	t.Run("empty parameter means nothing selected", func(t *testing.T) {
		v, _ := url.ParseQuery("categories=")
		got := ParseCategories(v, "categories")
		if got == nil {
			t.Fatal("expected non-nil slice for present-but-empty parameter")
		}
		if len(got) != 0 {
			t.Errorf("expected empty selection, got %v", got)
		}
	})

	t.Run("comma list with blanks", func(t *testing.T) {
		v, _ := url.ParseQuery("categories=Groceries,%20,Gas&categories=Dining")
		got := ParseCategories(v, "categories")
		want := []string{"Groceries", "Gas", "Dining"}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("category[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})
}

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange("2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	if start.Format("2006-01-02") != "2025-03-01" || end.Format("2006-01-02") != "2025-03-31" {
		t.Errorf("got %v..%v", start, end)
	}

	start, end, err = ParseDateRange("", "")
	if err != nil {
		t.Fatalf("blank range should not error: %v", err)
	}
	if !start.IsZero() || !end.IsZero() {
		t.Error("blank values should stay zero")
	}

	if _, _, err = ParseDateRange("03/01/2025", ""); err == nil {
		t.Error("expected error for malformed start date")
	}
}

func TestQueryInt(t *testing.T) {
	v, _ := url.ParseQuery("weeks=12&junk=abc")
	if got := QueryInt(v, "weeks", 6); got != 12 {
		t.Errorf("weeks = %d, want 12", got)
	}
	if got := QueryInt(v, "junk", 6); got != 6 {
		t.Errorf("unparseable value should fall back, got %d", got)
	}
	if got := QueryInt(v, "missing", 6); got != 6 {
		t.Errorf("missing value should fall back, got %d", got)
	}
}

func TestErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, "entity not found", 404)

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "entity not found" {
		t.Errorf("error = %q", body["error"])
	}
}
