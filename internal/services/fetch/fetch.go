package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/Jayden-Richmond/Radius-Finance/internal/cache"
)

// TransportError reports a resource that could not be retrieved, carrying
// the URL that failed.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FileStore is the slice of the encrypted storage layer the fetcher needs
// for file-scheme URLs.
type FileStore interface {
	OpenFile(path string) (io.ReadCloser, error)
	BaseDir() string
}

// Config tunes the fetcher.
type Config struct {
	// HTTPTimeout bounds each http(s) request. Zero means 30 seconds.
	HTTPTimeout time.Duration

	// CacheTTL is how long fetched text stays cached. Zero means 5 minutes.
	CacheTTL time.Duration

	// GCSCredentialsFile optionally points at a service account key for
	// gs URLs. Empty falls back to application default credentials.
	GCSCredentialsFile string
}

// Fetcher retrieves dataset text by URL: local files through the encrypted
// storage layer, http(s) endpoints, and gs buckets. Fetched text is cached
// by URL; cache failures never fail a fetch.
type Fetcher struct {
	files     FileStore
	store     cache.Cache
	client    *http.Client
	credsFile string
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// New creates a Fetcher. store may be nil to disable caching.
func New(files FileStore, store cache.Cache, cfg Config, logger zerolog.Logger) *Fetcher {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Fetcher{
		files:     files,
		store:     store,
		client:    &http.Client{Timeout: timeout},
		credsFile: cfg.GCSCredentialsFile,
		cacheTTL:  ttl,
		logger:    logger,
	}
}

// Fetch retrieves the text behind rawURL, dispatching on its scheme.
// Every failure is reported as a *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", &TransportError{URL: rawURL, Err: errors.New("empty resource URL")}
	}

	if text, ok := f.cacheGet(ctx, rawURL); ok {
		return text, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}

	var data []byte
	switch u.Scheme {
	case "", "file":
		data, err = f.fetchFile(u)
	case "http", "https":
		data, err = f.fetchHTTP(ctx, rawURL)
	case "gs":
		data, err = f.fetchGCS(ctx, u)
	default:
		err = fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}

	text := string(data)
	f.cacheSet(ctx, rawURL, data)

	return text, nil
}

// FetchPair retrieves the primary and reference datasets concurrently.
// A primary failure cancels the reference fetch and is returned; a
// reference failure only degrades the result (empty text, degraded true).
// An empty referenceURL skips that leg without marking degradation.
func (f *Fetcher) FetchPair(ctx context.Context, primaryURL, referenceURL string) (primary, reference string, degraded bool, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := f.Fetch(gctx, primaryURL)
		if err != nil {
			return err
		}
		primary = text
		return nil
	})

	if referenceURL != "" {
		g.Go(func() error {
			text, err := f.Fetch(gctx, referenceURL)
			if err != nil {
				f.logger.Warn().Err(err).Str("url", referenceURL).
					Msg("reference fetch failed; rendering without reference data")
				degraded = true
				return nil
			}
			reference = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", "", false, err
	}

	return primary, reference, degraded, nil
}

// fetchFile reads a local file through the storage layer. Relative paths
// resolve against the data directory.
func (f *Fetcher) fetchFile(u *url.URL) ([]byte, error) {
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return nil, errors.New("empty file path")
	}
	if !filepath.IsAbs(path) && f.files.BaseDir() != "" {
		path = filepath.Join(f.files.BaseDir(), path)
	}

	r, err := f.files.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (f *Fetcher) fetchGCS(ctx context.Context, u *url.URL) ([]byte, error) {
	bucket := u.Host
	object := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("invalid gs URL %q: missing bucket or object", u.String())
	}

	var opts []option.ClientOption
	if f.credsFile != "" {
		opts = append(opts, option.WithCredentialsFile(f.credsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (f *Fetcher) cacheGet(ctx context.Context, key string) (string, bool) {
	if f.store == nil {
		return "", false
	}

	data, err := f.store.Get(ctx, key)
	if err != nil {
		f.logger.Debug().Err(err).Str("url", key).Msg("resource cache get failed")
		return "", false
	}
	if data == nil {
		return "", false
	}

	return string(data), true
}

func (f *Fetcher) cacheSet(ctx context.Context, key string, data []byte) {
	if f.store == nil {
		return
	}

	if err := f.store.Set(ctx, key, data, f.cacheTTL); err != nil {
		f.logger.Debug().Err(err).Str("url", key).Msg("resource cache set failed")
	}
}
