package repository

// Schema definitions, compatible with both SQLite and PostgreSQL.

const schemaSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    entity_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_entity ON sessions(entity_id);
CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
`

// Preferences hold one row per entity. categories is a JSON array; NULL
// means "all categories" and is distinct from the empty array.
const schemaPreferences = `
CREATE TABLE IF NOT EXISTS preferences (
    entity_id TEXT PRIMARY KEY,
    categories TEXT,
    start_date TEXT NOT NULL DEFAULT '',
    end_date TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL
);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaSessions,
		schemaPreferences,
	}
}
