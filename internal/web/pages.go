package web

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/statusboard/internal/services"
	"github.com/prudhvinik1/statusboard/internal/utils"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	AccountID string    `json:"account_id"`
}

func (s *Server) handleRosterPage(w http.ResponseWriter, r *http.Request) {
	s.pages.render(w, http.StatusOK, "roster.html", pageData{
		Title:  "Status Board",
		Socket: "/ws/roster",
	})
}

func (s *Server) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.pages.render(w, http.StatusOK, "profile.html", pageData{
		Title:  "User " + id,
		Socket: "/ws/profile/" + url.PathEscape(id),
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if authFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	// a cookie that did not authenticate is stale
	if _, err := r.Cookie(sessionCookie); err == nil {
		s.clearSessionCookie(w)
	}
	s.pages.render(w, http.StatusOK, "login.html", pageData{Title: "Sign in"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, isJSON, err := readCredentials(r)
	if err != nil {
		s.loginFailed(w, isJSON, http.StatusBadRequest, "Invalid request")
		return
	}

	resp, err := s.auth.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			s.loginFailed(w, isJSON, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.log.WithError(err).Error("login failed")
		s.loginFailed(w, isJSON, http.StatusInternalServerError, "Sign in failed, please try again")
		return
	}

	s.signedIn(w, r, isJSON, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, isJSON, err := readCredentials(r)
	if err != nil {
		s.loginFailed(w, isJSON, http.StatusBadRequest, "Invalid request")
		return
	}

	if _, err := s.auth.Register(r.Context(), creds.Email, creds.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrEmailExists):
			s.loginFailed(w, isJSON, http.StatusConflict, "An account with that email already exists")
		case errors.Is(err, utils.ErrWeakPassword):
			s.loginFailed(w, isJSON, http.StatusBadRequest, err.Error())
		default:
			s.log.WithError(err).Error("registration failed")
			s.loginFailed(w, isJSON, http.StatusInternalServerError, "Registration failed, please try again")
		}
		return
	}

	resp, err := s.auth.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		s.log.WithError(err).Error("login after registration failed")
		s.loginFailed(w, isJSON, http.StatusInternalServerError, "Sign in failed, please try again")
		return
	}

	s.signedIn(w, r, isJSON, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if info := authFrom(r.Context()); info != nil {
		revoke := s.auth.Logout
		if r.FormValue("all") == "1" {
			revoke = s.auth.LogoutAll
		}
		if err := revoke(r.Context(), info.token); err != nil {
			s.log.WithError(err).Warn("failed to revoke session")
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) signedIn(w http.ResponseWriter, r *http.Request, isJSON bool, resp *services.LoginResponse) {
	if isJSON {
		writeJSON(w, http.StatusOK, loginResponse{
			Token:     resp.Token,
			ExpiresAt: resp.ExpiresAt,
			AccountID: resp.AccountID.String(),
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) loginFailed(w http.ResponseWriter, isJSON bool, status int, message string) {
	if isJSON {
		writeError(w, status, message)
		return
	}
	s.pages.render(w, status, "login.html", pageData{Title: "Sign in", Error: message})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// readCredentials accepts a form post or a JSON body.
func readCredentials(r *http.Request) (credentials, bool, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var creds credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return credentials{}, true, err
		}
		creds.Email = strings.TrimSpace(creds.Email)
		return creds, true, nil
	}

	if err := r.ParseForm(); err != nil {
		return credentials{}, false, err
	}
	return credentials{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}, false, nil
}
