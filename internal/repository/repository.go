// Package repository persists sessions and dashboard preferences.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jayden-Richmond/Radius-Finance/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Config selects and tunes the backing database.
type Config struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string

	SQLitePath string

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLRepository implements the session and preferences store over
// database/sql. Works with both the SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New opens the configured database and runs migrations.
func New(cfg Config) (*SQLRepository, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}

	var db *sql.DB
	var err error

	switch driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: driver,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveSession stores a new session row.
func (r *SQLRepository) SaveSession(ctx context.Context, session *models.Session) error {
	if session.Token == "" || session.EntityID == "" {
		return fmt.Errorf("%w: token and entity id are required", ErrInvalidInput)
	}

	query := `INSERT INTO sessions (token, entity_id, created_at) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		session.Token, session.EntityID, session.CreatedAt.UTC(),
	)
	return err
}

// GetSession retrieves a session by token.
func (r *SQLRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	query := `SELECT token, entity_id, created_at FROM sessions WHERE token = ?`

	var session models.Session
	err := r.db.QueryRowContext(ctx, r.rebind(query), token).Scan(
		&session.Token, &session.EntityID, &session.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// DeleteSession removes a session by token.
func (r *SQLRepository) DeleteSession(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = ?`

	result, err := r.db.ExecContext(ctx, r.rebind(query), token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteExpiredSessions removes sessions created before the cutoff and
// reports how many were dropped.
func (r *SQLRepository) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE created_at < ?`

	result, err := r.db.ExecContext(ctx, r.rebind(query), cutoff.UTC())
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// SavePreferences upserts an entity's saved dashboard state. A nil
// Categories slice ("all categories") is kept distinct from an empty one
// ("none selected") across the round trip.
func (r *SQLRepository) SavePreferences(ctx context.Context, prefs *models.Preferences) error {
	if prefs.EntityID == "" {
		return fmt.Errorf("%w: entity id is required", ErrInvalidInput)
	}

	var categories sql.NullString
	if prefs.Categories != nil {
		encoded, err := json.Marshal(prefs.Categories)
		if err != nil {
			return err
		}
		categories = sql.NullString{String: string(encoded), Valid: true}
	}

	now := prefs.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	query := `
		INSERT INTO preferences (entity_id, categories, start_date, end_date, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			categories = excluded.categories,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		prefs.EntityID, categories, prefs.StartDate, prefs.EndDate, now.UTC(),
	)
	return err
}

// GetPreferences retrieves an entity's saved dashboard state.
func (r *SQLRepository) GetPreferences(ctx context.Context, entityID string) (*models.Preferences, error) {
	query := `SELECT entity_id, categories, start_date, end_date, updated_at FROM preferences WHERE entity_id = ?`

	var prefs models.Preferences
	var categories sql.NullString

	err := r.db.QueryRowContext(ctx, r.rebind(query), entityID).Scan(
		&prefs.EntityID, &categories, &prefs.StartDate, &prefs.EndDate, &prefs.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if categories.Valid {
		if err := json.Unmarshal([]byte(categories.String), &prefs.Categories); err != nil {
			return nil, fmt.Errorf("failed to parse saved categories: %w", err)
		}
		if prefs.Categories == nil {
			prefs.Categories = []string{}
		}
	}

	return &prefs, nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
