// Package web serves the status board over HTTP: server-rendered pages, a
// websocket per mounted view, and a small JSON API.
package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prudhvinik1/statusboard/internal/services"
	"github.com/prudhvinik1/statusboard/internal/views"
	"github.com/sirupsen/logrus"
)

type Server struct {
	auth     *services.AuthService
	statuses *services.StatusService
	pages    *pages
	upgrader websocket.Upgrader
	baseURL  string
	secure   bool
	log      *logrus.Entry
}

func NewServer(auth *services.AuthService, statuses *services.StatusService, baseURL string, logger *logrus.Logger) (*Server, error) {
	if auth == nil || statuses == nil {
		return nil, errors.New("web server requires auth and status services")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	p, err := newPages()
	if err != nil {
		return nil, err
	}

	baseURL = strings.TrimRight(baseURL, "/")
	return &Server{
		auth:     auth,
		statuses: statuses,
		pages:    p,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		baseURL: baseURL,
		secure:  strings.HasPrefix(baseURL, "https://"),
		log:     logger.WithField("component", "web"),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(s.authenticate)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)

	r.With(s.requirePageAuth).Get("/", s.handleRosterPage)
	r.Get("/profile/{id}", s.handleProfilePage)

	r.With(s.requireAPIAuth).Get("/ws/roster", s.handleRosterSocket)
	r.Get("/ws/profile/{id}", s.handleProfileSocket)

	r.Route("/api/statuses", func(r chi.Router) {
		r.Get("/", s.handleListStatuses)
		r.With(s.requireAPIAuth).Put("/me", s.handlePutMyStatus)
		r.Get("/{id}", s.handleGetStatus)
	})

	return r
}

func (s *Server) viewOptions(log *logrus.Entry) []views.Option {
	opts := []views.Option{views.WithLogger(log)}
	if s.baseURL != "" {
		opts = append(opts, views.WithBaseURL(s.baseURL))
	}
	return opts
}
