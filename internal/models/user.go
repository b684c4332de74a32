package models

import "time"

// User is one row of the users CSV. Credentials are compared in plaintext;
// this is a demo application and must never hold real secrets.
type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
	EntityID string `json:"entity_id"`
}

// Session ties a browser cookie to an entity
type Session struct {
	Token     string    `json:"token"`
	EntityID  string    `json:"entity_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Preferences contains an entity's saved dashboard state. The rendering
// pipeline receives these as plain data; nothing reads them ambiently.
type Preferences struct {
	EntityID   string    `json:"entity_id"`
	Categories []string  `json:"categories"`
	StartDate  string    `json:"start_date,omitempty"` // "2006-01-02", empty = trailing window
	EndDate    string    `json:"end_date,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultPreferences returns preferences for an entity with no saved state:
// no explicit date range and every category selected (nil means "all").
func DefaultPreferences(entityID string) *Preferences {
	return &Preferences{
		EntityID:   entityID,
		Categories: nil,
	}
}
