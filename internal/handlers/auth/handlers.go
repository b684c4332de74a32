// Package auth implements login, logout and the session middleware that
// resolves the signed-in entity for the API routes.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httpx "github.com/Jayden-Richmond/Radius-Finance/internal/http"
	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
	"github.com/Jayden-Richmond/Radius-Finance/internal/repository"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/dataloader"
)

// SessionStore is the slice of the repository the auth handlers need.
type SessionStore interface {
	SaveSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config carries the demo credentials and session settings.
type Config struct {
	DemoUsername string
	DemoPassword string
	DemoEntityID string
	CookieName   string
	TTL          time.Duration
}

var (
	sessions SessionStore
	loader   *dataloader.DataLoader
	cfg      Config
	logger   zerolog.Logger
)

// Initialize sets the package dependencies. Call before RegisterRoutes.
func Initialize(store SessionStore, l *dataloader.DataLoader, c Config, log zerolog.Logger) {
	sessions = store
	loader = l
	cfg = c
	if cfg.CookieName == "" {
		cfg.CookieName = "radius_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	logger = log
}

// RegisterRoutes registers the auth routes on the given router.
func RegisterRoutes(r chi.Router) {
	r.Post("/login", handleLogin)
	r.Post("/logout", handleLogout)
	r.Get("/session", handleSession)
}

type contextKey string

const entityKey contextKey = "entity_id"

// EntityID returns the signed-in entity for the request, or "" outside
// the session middleware.
func EntityID(ctx context.Context) string {
	id, _ := ctx.Value(entityKey).(string)
	return id
}

// WithEntity stamps an entity on the context. Exported for handler tests
// that bypass the middleware.
func WithEntity(ctx context.Context, entityID string) context.Context {
	return context.WithValue(ctx, entityKey, entityID)
}

// Middleware rejects requests without a live session and stamps the
// session's entity on the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFromRequest(r)
		if !ok {
			httpx.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithEntity(r.Context(), sess.EntityID)))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httpx.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	entityID, ok := authenticate(r.Context(), req.Username, req.Password)
	if !ok {
		httpx.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	session := &models.Session{
		Token:     uuid.New().String(),
		EntityID:  entityID,
		CreatedAt: time.Now().UTC(),
	}
	if err := sessions.SaveSession(r.Context(), session); err != nil {
		logger.Error().Err(err).Msg("saving session")
		httpx.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}

	// Opportunistic housekeeping; failures only get logged.
	if n, err := sessions.DeleteExpiredSessions(r.Context(), time.Now().UTC().Add(-cfg.TTL)); err != nil {
		logger.Debug().Err(err).Msg("expiring sessions")
	} else if n > 0 {
		logger.Debug().Int64("count", n).Msg("expired sessions removed")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.JSON(w, http.StatusOK, map[string]string{
		"entity_id": entityID,
		"username":  req.Username,
	})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(cfg.CookieName); err == nil && c.Value != "" {
		if err := sessions.DeleteSession(r.Context(), c.Value); err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Err(err).Msg("deleting session")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(r)
	if !ok {
		httpx.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"entity_id": sess.EntityID})
}

// authenticate checks the demo credentials first, then the optional users
// dataset. Passwords compare in the clear: this dashboard fronts a
// synthetic dataset, not real accounts.
func authenticate(ctx context.Context, username, password string) (string, bool) {
	if cfg.DemoUsername != "" && username == cfg.DemoUsername && password == cfg.DemoPassword {
		return cfg.DemoEntityID, true
	}
	if loader == nil {
		return "", false
	}
	users, err := loader.LoadUsers(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("loading users dataset")
		return "", false
	}
	for _, u := range users {
		if u.Username == username && u.Password == password {
			return u.EntityID, true
		}
	}
	return "", false
}

func sessionFromRequest(r *http.Request) (*models.Session, bool) {
	c, err := r.Cookie(cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	sess, err := sessions.GetSession(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Err(err).Msg("looking up session")
		}
		return nil, false
	}
	if time.Since(sess.CreatedAt) > cfg.TTL {
		// Expired. Drop the row so the cookie stops resolving.
		if err := sessions.DeleteSession(r.Context(), sess.Token); err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Debug().Err(err).Msg("dropping expired session")
		}
		return nil, false
	}
	return sess, true
}
