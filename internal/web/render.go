package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/prudhvinik1/statusboard/internal/views"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pageData feeds the full-page templates. The live content arrives over the
// socket named by Socket.
type pageData struct {
	Title  string
	Socket string
	Error  string
}

type pages struct {
	tmpl *template.Template
}

func newPages() (*pages, error) {
	funcMap := template.FuncMap{
		"statuses": func() []models.Status { return models.AllStatuses },
		"loaded":   func(p views.Phase) bool { return p == views.PhaseLoaded },
		"clock":    func(t time.Time) string { return t.Format("15:04:05") },
		"datetime": func(t time.Time) string { return t.Format("Jan 2, 2006 15:04:05 MST") },
		"iso":      func(t time.Time) string { return t.Format(time.RFC3339) },
		"ago":      humanize.Time,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &pages{tmpl: tmpl}, nil
}

func (p *pages) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logrus.WithError(err).WithField("template", name).Error("template error")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (p *pages) fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (p *pages) rosterHTML(state views.RosterState) (string, error) {
	return p.fragment("roster-body", state)
}

func (p *pages) profileHTML(state views.ProfileState) (string, error) {
	return p.fragment("profile-body", state)
}
