package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/internal/util"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageNames = []string{"email.html", "login.html", "register.html", "dashboard.html"}

// PageData is what every page template receives.
type PageData struct {
	Title     string
	Email     string
	FirstName string
	LastName  string
	Error     string
	Notice    string
	Errors    util.FieldErrors
	User      *model.User
}

// Pages holds one parsed template set per page, each layered on the layout.
type Pages struct {
	templates map[string]*template.Template
}

func ParsePages() (*Pages, error) {
	pages := &Pages{templates: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).ParseFS(templateFiles, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages.templates[name] = tmpl
	}
	return pages, nil
}

// MustParsePages panics when the embedded templates are broken.
func MustParsePages() *Pages {
	pages, err := ParsePages()
	if err != nil {
		panic(err)
	}
	return pages
}

// Render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (p *Pages) Render(w http.ResponseWriter, status int, name string, data PageData) {
	tmpl, ok := p.templates[name]
	if !ok {
		slog.Error("unknown page template", "name", name)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}
	if data.Errors == nil {
		data.Errors = util.FieldErrors{}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render page", "name", name, "error", err)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
