package web

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prudhvinik1/statusboard/internal/views"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Frame types pushed to the browser.
const (
	frameRender    = "render"
	frameToast     = "toast"
	frameClipboard = "clipboard"
	frameRedirect  = "redirect"
)

type frame struct {
	Type    string `json:"type"`
	HTML    string `json:"html,omitempty"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
	URL     string `json:"url,omitempty"`
}

// command is a user action sent by the browser.
type command struct {
	Type    string `json:"type"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

// socket is one browser connection. It is the notifier, clipboard and
// renderer of the view mounted on it.
type socket struct {
	conn  *websocket.Conn
	pages *pages
	log   *logrus.Entry

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSocket(conn *websocket.Conn, p *pages, log *logrus.Entry) *socket {
	return &socket{
		conn:  conn,
		pages: p,
		log:   log,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
	}
}

func (s *socket) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *socket) push(f frame) {
	data, err := json.Marshal(f)
	if err != nil {
		s.log.WithError(err).Error("failed to encode frame")
		return
	}

	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.send <- data:
	case <-s.done:
	default:
		s.log.WithField("frame", f.Type).Warn("send buffer full, dropping frame")
	}
}

func (s *socket) NotifySuccess(message string) {
	s.push(frame{Type: frameToast, Level: "success", Message: message})
}

func (s *socket) NotifyError(message string) {
	s.push(frame{Type: frameToast, Level: "error", Message: message})
}

func (s *socket) WriteText(text string) {
	s.push(frame{Type: frameClipboard, Text: text})
}

func (s *socket) RenderRoster(state views.RosterState) {
	html, err := s.pages.rosterHTML(state)
	if err != nil {
		s.log.WithError(err).Error("failed to render roster")
		return
	}
	s.push(frame{Type: frameRender, HTML: html})
}

func (s *socket) RenderProfile(state views.ProfileState) {
	html, err := s.pages.profileHTML(state)
	if err != nil {
		s.log.WithError(err).Error("failed to render profile")
		return
	}
	s.push(frame{Type: frameRender, HTML: html})
}

// readPump decodes commands until the connection fails or closes.
func (s *socket) readPump(handle func(command)) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.WithError(err).Warn("websocket read error")
			} else {
				s.log.Debug("websocket closed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.log.WithError(err).Debug("ignoring malformed command")
			continue
		}
		handle(cmd)
	}
}

// writePump owns all writes to the connection and closes it on exit.
func (s *socket) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.WithError(err).Warn("failed to write frame")
				s.close()
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.WithError(err).Debug("failed to send ping")
				s.close()
				return
			}

		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
