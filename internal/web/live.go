package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/prudhvinik1/statusboard/internal/services"
	"github.com/prudhvinik1/statusboard/internal/views"
	"github.com/sirupsen/logrus"
)

const signOutTimeout = 5 * time.Second

// sessionIdentity is the signed-in user behind one roster socket. SignOut
// revokes the session and sends the browser to the login page.
type sessionIdentity struct {
	auth *services.AuthService
	info *authInfo
	sock *socket
	log  *logrus.Entry

	mu        sync.Mutex
	signedOut bool
}

func (i *sessionIdentity) CurrentUser() (views.User, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.signedOut {
		return views.User{}, false
	}
	return views.User{ID: i.info.claims.AccountID.String()}, true
}

func (i *sessionIdentity) SignOut() {
	i.mu.Lock()
	if i.signedOut {
		i.mu.Unlock()
		return
	}
	i.signedOut = true
	i.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
	defer cancel()
	if err := i.auth.Logout(ctx, i.info.token); err != nil {
		i.log.WithError(err).Warn("failed to revoke session")
	}
	i.sock.push(frame{Type: frameRedirect, URL: "/login"})
}

func (s *Server) handleRosterSocket(w http.ResponseWriter, r *http.Request) {
	info := authFrom(r.Context())
	log := s.log.WithFields(logrus.Fields{
		"socket":     "roster",
		"account_id": info.claims.AccountID,
		"session_id": info.claims.SessionID,
	})

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	sock := newSocket(conn, s.pages, log)
	identity := &sessionIdentity{auth: s.auth, info: info, sock: sock, log: log}

	roster, err := views.NewRoster(s.statuses, identity, sock, sock, sock, s.viewOptions(log)...)
	if err != nil {
		log.WithError(err).Error("failed to create roster view")
		conn.Close()
		return
	}

	s.serveSocket(r.Context(), sock, roster.Mount, roster.Unmount, func(cmd command) {
		switch cmd.Type {
		case "set_status":
			roster.SelectStatus(models.Status(cmd.Status))
		case "set_message":
			roster.SetMessage(cmd.Message)
		case "share":
			roster.Share()
		case "sign_out":
			roster.SignOut()
		default:
			log.WithField("command", cmd.Type).Debug("ignoring unknown command")
		}
	})
}

func (s *Server) handleProfileSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := s.log.WithFields(logrus.Fields{"socket": "profile", "record_id": id})

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	sock := newSocket(conn, s.pages, log)

	profile, err := views.NewProfile(s.statuses, sock, sock, s.viewOptions(log)...)
	if err != nil {
		log.WithError(err).Error("failed to create profile view")
		conn.Close()
		return
	}

	mount := func(ctx context.Context) error { return profile.Mount(ctx, id) }
	s.serveSocket(r.Context(), sock, mount, profile.Unmount, func(cmd command) {
		switch cmd.Type {
		case "navigate":
			profile.Navigate(cmd.ID)
		default:
			log.WithField("command", cmd.Type).Debug("ignoring unknown command")
		}
	})
}

// serveSocket runs the view for as long as the connection lives. The view
// is unmounted before the socket is closed.
func (s *Server) serveSocket(parent context.Context, sock *socket, mount func(context.Context) error, unmount func(), handle func(command)) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	go sock.writePump()
	defer sock.close()

	// server shutdown closes the socket, which ends the read pump
	go func() {
		select {
		case <-ctx.Done():
			sock.close()
		case <-sock.done:
		}
	}()

	if err := mount(ctx); err != nil {
		sock.log.WithError(err).Error("failed to mount view")
		return
	}
	defer unmount()

	sock.log.Debug("view mounted")
	sock.readPump(handle)
}
