// Package server assembles the HTTP application: storage, cache,
// repository, data loading, the handler packages and the route tree.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Jayden-Richmond/Radius-Finance/internal/cache"
	"github.com/Jayden-Richmond/Radius-Finance/internal/config"
	"github.com/Jayden-Richmond/Radius-Finance/internal/handlers/auth"
	"github.com/Jayden-Richmond/Radius-Finance/internal/handlers/dashboard"
	"github.com/Jayden-Richmond/Radius-Finance/internal/handlers/explorer"
	httpx "github.com/Jayden-Richmond/Radius-Finance/internal/http"
	"github.com/Jayden-Richmond/Radius-Finance/internal/repository"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/dataloader"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/fetch"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/metrics"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/storage"
	"github.com/Jayden-Richmond/Radius-Finance/internal/templates"
	"github.com/Jayden-Richmond/Radius-Finance/internal/version"
)

// Server wires the application together and owns the HTTP listener.
type Server struct {
	cfg      *config.Config
	logger   zerolog.Logger
	router   chi.Router
	http     *http.Server
	repo     *repository.SQLRepository
	store    cache.Cache
	files    *storage.Storage
	renderer *templates.Renderer
}

// New builds a fully wired server from configuration.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	files := storage.New(cfg.DataDirectory)
	if files.IsEncrypted() {
		if cfg.StoragePassphrase == "" {
			return nil, fmt.Errorf("data directory %s is encrypted; set RADIUS_STORAGE_PASSPHRASE or run radius decrypt", cfg.DataDirectory)
		}
		if err := files.Unlock(cfg.StoragePassphrase); err != nil {
			return nil, fmt.Errorf("unlock storage: %w", err)
		}
	}

	store, err := cache.New(cfg.CacheConfig())
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	repo, err := repository.New(cfg.RepositoryConfig())
	if err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}

	fetcher := fetch.New(files, store, cfg.FetchConfig(), logger)
	loader := dataloader.New(fetcher, cfg.LoaderConfig(), logger)

	renderer, err := templates.New(cfg.TemplatesDirectory, cfg.Debug)
	if err != nil {
		logger.Warn().Err(err).Msg("templates unavailable; serving fallback pages")
		renderer = nil
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		store:    store,
		files:    files,
		renderer: renderer,
	}

	auth.Initialize(repo, loader, auth.Config{
		DemoUsername: cfg.Auth.DemoUsername,
		DemoPassword: cfg.Auth.DemoPassword,
		DemoEntityID: cfg.Auth.DemoEntityID,
		CookieName:   cfg.Auth.SessionCookie,
		TTL:          cfg.SessionTTL(),
	}, logger)
	dashboard.Initialize(loader, repo, metrics.New(), dashboard.Config{
		DefaultWeeks: cfg.DefaultWeeks,
	}, logger)
	explorer.Initialize(loader, logger)

	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(CORSMiddleware)
	r.Use(RecoverMiddleware(s.logger))
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	fileServer := http.FileServer(http.Dir(s.cfg.StaticDirectory))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/dashboard", http.StatusTemporaryRedirect)
	})
	r.Get("/login", s.handlePage("login.html", "Sign In"))
	r.Get("/dashboard", s.handlePage("dashboard.html", "Dashboard"))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.handleHealth)
		api.Get("/version", s.handleVersion)
		auth.RegisterRoutes(api)
		api.Group(func(priv chi.Router) {
			priv.Use(auth.Middleware)
			dashboard.RegisterRoutes(priv)
			explorer.RegisterRoutes(priv)
		})
	})

	return r
}

func (s *Server) handlePage(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.RenderTemplate(w, s.renderer, name, map[string]interface{}{
			"Title": title,
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := map[string]string{"database": "ok", "cache": "ok"}
	if err := s.repo.Ping(r.Context()); err != nil {
		checks["database"] = err.Error()
		status = "degraded"
	}
	if err := s.store.Ping(r.Context()); err != nil {
		checks["cache"] = err.Error()
		status = "degraded"
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	httpx.JSON(w, code, map[string]interface{}{"status": status, "checks": checks})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, version.Get())
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info().Str("addr", s.cfg.ListenAddr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the backing stores.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.repo.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Router exposes the route tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Storage exposes the data-directory store, used by the CLI for
// encryption management.
func (s *Server) Storage() *storage.Storage {
	return s.files
}
