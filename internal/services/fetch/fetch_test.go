package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Jayden-Richmond/Radius-Finance/internal/cache"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/storage"
)

func newTestFetcher(t *testing.T, store cache.Cache) (*Fetcher, string) {
	t.Helper()
	dir := t.TempDir()
	return New(storage.New(dir), store, Config{}, zerolog.Nop()), dir
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("id,state\nuser-001,Texas\n"))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t, nil)
	text, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if text != "id,state\nuser-001,Texas\n" {
		t.Errorf("Fetch() = %q, want CSV body", text)
	}
}

func TestFetchHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t, nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch() expected error for 500 response")
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Fetch() error = %T, want *TransportError", err)
	}
	if te.URL != srv.URL {
		t.Errorf("TransportError.URL = %q, want %q", te.URL, srv.URL)
	}
}

func TestFetchFile(t *testing.T) {
	f, dir := newTestFetcher(t, nil)

	path := filepath.Join(dir, "transactions.csv")
	content := "id,purchase_amount\nuser-001,50.00\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tests := []struct {
		name string
		url  string
	}{
		{"absolute file scheme", "file://" + path},
		{"bare absolute path", path},
		{"relative to data dir", "transactions.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := f.Fetch(context.Background(), tt.url)
			if err != nil {
				t.Fatalf("Fetch(%q) error = %v", tt.url, err)
			}
			if text != content {
				t.Errorf("Fetch(%q) = %q, want %q", tt.url, text, content)
			}
		})
	}
}

func TestFetchFileMissing(t *testing.T) {
	f, _ := newTestFetcher(t, nil)

	_, err := f.Fetch(context.Background(), "missing.csv")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Fetch() error = %T, want *TransportError", err)
	}
}

func TestFetchUnsupportedScheme(t *testing.T) {
	f, _ := newTestFetcher(t, nil)

	_, err := f.Fetch(context.Background(), "ftp://example.com/data.csv")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Fetch() error = %T, want *TransportError", err)
	}
}

func TestFetchEmptyURL(t *testing.T) {
	f, _ := newTestFetcher(t, nil)

	_, err := f.Fetch(context.Background(), "  ")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Fetch() error = %T, want *TransportError", err)
	}
}

func TestFetchUsesCache(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte("cached body"))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t, cache.NewLRUCache(8))

	for i := 0; i < 3; i++ {
		text, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if text != "cached body" {
			t.Errorf("Fetch() = %q, want %q", text, "cached body")
		}
	}

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("server hits = %d, want 1 (later fetches served from cache)", got)
	}
}

func TestFetchPair(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("primary text"))
	}))
	defer primary.Close()
	reference := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("reference text"))
	}))
	defer reference.Close()

	f, _ := newTestFetcher(t, nil)
	p, ref, degraded, err := f.FetchPair(context.Background(), primary.URL, reference.URL)
	if err != nil {
		t.Fatalf("FetchPair() error = %v", err)
	}
	if p != "primary text" || ref != "reference text" {
		t.Errorf("FetchPair() = (%q, %q), want both bodies", p, ref)
	}
	if degraded {
		t.Error("FetchPair() degraded = true, want false")
	}
}

func TestFetchPairReferenceFailureDegrades(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("primary text"))
	}))
	defer primary.Close()
	reference := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer reference.Close()

	f, _ := newTestFetcher(t, nil)
	p, ref, degraded, err := f.FetchPair(context.Background(), primary.URL, reference.URL)
	if err != nil {
		t.Fatalf("FetchPair() error = %v, reference failure must not be fatal", err)
	}
	if p != "primary text" {
		t.Errorf("FetchPair() primary = %q, want %q", p, "primary text")
	}
	if ref != "" {
		t.Errorf("FetchPair() reference = %q, want empty on failure", ref)
	}
	if !degraded {
		t.Error("FetchPair() degraded = false, want true")
	}
}

func TestFetchPairPrimaryFailureFatal(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer primary.Close()
	reference := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("reference text"))
	}))
	defer reference.Close()

	f, _ := newTestFetcher(t, nil)
	_, _, _, err := f.FetchPair(context.Background(), primary.URL, reference.URL)
	if err == nil {
		t.Fatal("FetchPair() expected error when the primary fetch fails")
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("FetchPair() error = %T, want *TransportError", err)
	}
}

func TestFetchPairSkipsEmptyReference(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("primary text"))
	}))
	defer primary.Close()

	f, _ := newTestFetcher(t, nil)
	p, ref, degraded, err := f.FetchPair(context.Background(), primary.URL, "")
	if err != nil {
		t.Fatalf("FetchPair() error = %v", err)
	}
	if p != "primary text" {
		t.Errorf("FetchPair() primary = %q, want %q", p, "primary text")
	}
	if ref != "" || degraded {
		t.Errorf("FetchPair() = (ref %q, degraded %v), want empty reference without degradation", ref, degraded)
	}
}
