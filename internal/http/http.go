// Package http carries response and query helpers shared by the API
// handler packages.
package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jayden-Richmond/Radius-Finance/internal/templates"
)

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encoding response body")
	}
}

// Error writes a JSON error body of the form {"error": message}.
func Error(w http.ResponseWriter, message string, status int) {
	JSON(w, status, map[string]string{"error": message})
}

// RenderTemplate renders a full page, falling back to a plain stub when no
// renderer is configured so the API stays usable without template files.
func RenderTemplate(w http.ResponseWriter, renderer *templates.Renderer, name string, data map[string]interface{}) {
	if renderer != nil {
		renderer.Render(w, name, data)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<html><body><h1>" + name + "</h1><p>Templates not loaded. Check configuration.</p></body></html>"))
}

// ParseDateRange parses start and end query values in YYYY-MM-DD form.
// Blank values stay zero so callers can tell "not supplied" apart from a
// real date; malformed values are an error.
func ParseDateRange(startStr, endStr string) (start, end time.Time, err error) {
	if startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// ParseCategories interprets a comma-separated category parameter. An
// absent parameter means no restriction and returns nil; a present
// parameter returns the non-blank values, which may legitimately be an
// empty, non-nil list ("categories=" with everything deselected).
func ParseCategories(values url.Values, key string) []string {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, chunk := range raw {
		for _, part := range strings.Split(chunk, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// QueryInt reads an integer query value, returning def when the value is
// missing or unparseable.
func QueryInt(values url.Values, key string, def int) int {
	raw := values.Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
