// Package templates renders the dashboard's HTML pages. The renderer is
// optional: the server falls back to plain stub pages when no template
// directory is available.
package templates

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Renderer parses and executes the HTML templates.
type Renderer struct {
	templates *template.Template
	debug     bool
	baseDir   string
}

// New creates a renderer from the template directory. In debug mode
// templates reload on every render.
func New(templateDir string, debug bool) (*Renderer, error) {
	r := &Renderer{
		debug:   debug,
		baseDir: templateDir,
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatMoney": formatMoney,
		"formatDate":  formatDate,
		"deref":       deref,
		"toJSON":      toJSON,
		"lower":       strings.ToLower,
		"upper":       strings.ToUpper,
		"now":         time.Now,
	}
}

func (r *Renderer) load() error {
	tmpl := template.New("").Funcs(funcMap())

	var files []string
	for _, subdir := range []string{"layouts", "pages", "partials"} {
		matches, err := filepath.Glob(filepath.Join(r.baseDir, subdir, "*.html"))
		if err != nil {
			return fmt.Errorf("globbing %s templates: %w", subdir, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no template files found in %s", r.baseDir)
	}

	parsed, err := tmpl.ParseFiles(files...)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	r.templates = parsed
	log.Debug().Int("files", len(files)).Str("dir", r.baseDir).Msg("templates loaded")
	return nil
}

// Reload re-parses the template files.
func (r *Renderer) Reload() error {
	return r.load()
}

// Render executes a page template to the response.
func (r *Renderer) Render(w http.ResponseWriter, name string, data interface{}) error {
	if r.debug {
		if err := r.load(); err != nil {
			log.Error().Err(err).Msg("reloading templates")
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("rendering template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}
	return nil
}

// RenderPartial executes a partial template (no layout) to the response.
func (r *Renderer) RenderPartial(w http.ResponseWriter, name string, data interface{}) error {
	return r.Render(w, name, data)
}

// RenderToString executes a template into a string.
func (r *Renderer) RenderToString(name string, data interface{}) (string, error) {
	var sb strings.Builder
	if err := r.templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ExecuteTemplate executes a template to an arbitrary writer.
func (r *Renderer) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

func formatMoney(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	formatted := fmt.Sprintf("%.2f", v)

	parts := strings.Split(formatted, ".")
	intPart := parts[0]
	var sb strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteRune(',')
		}
		sb.WriteRune(c)
	}
	sb.WriteRune('.')
	sb.WriteString(parts[1])

	if negative {
		return "-$" + sb.String()
	}
	return "$" + sb.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// deref safely dereferences a pointer, returning 0 if nil
func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func toJSON(v interface{}) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(b)
}
