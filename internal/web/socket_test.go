package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/prudhvinik1/statusboard/internal/services"
	"github.com/prudhvinik1/statusboard/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameTimeout = 3 * time.Second

func dial(t *testing.T, srv *httptest.Server, path, token string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until match returns true
func readUntil(t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()
	deadline := time.Now().Add(frameTimeout)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var f frame
		require.NoError(t, conn.ReadJSON(&f), "no matching frame before deadline")
		if match(f) {
			return f
		}
	}
}

func isToast(level, message string) func(frame) bool {
	return func(f frame) bool {
		return f.Type == frameToast && f.Level == level && f.Message == message
	}
}

func TestRosterSocket_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/roster"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestRosterSocket_SelectStatus covers: a signed-in user with no record picks Busy with "in a meeting"
func TestRosterSocket_SelectStatus(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	token, accountID := env.signUp(t, "ada@example.com")

	conn := dial(t, srv, "/ws/roster", token)
	readUntil(t, conn, func(f frame) bool {
		return f.Type == frameRender && strings.Contains(f.HTML, "No statuses yet.")
	})

	// ACT
	require.NoError(t, conn.WriteJSON(command{Type: "set_message", Message: "in a meeting"}))
	require.NoError(t, conn.WriteJSON(command{Type: "set_status", Status: "busy"}))

	// ASSERT
	readUntil(t, conn, isToast("success", views.MsgStatusUpdated))
	rendered := readUntil(t, conn, func(f frame) bool {
		return f.Type == frameRender && strings.Contains(f.HTML, "in a meeting")
	})
	assert.Contains(t, rendered.HTML, "You")

	record, err := env.statuses.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBusy, record.Status)
	assert.Equal(t, "in a meeting", record.Message)
}

func TestRosterSocket_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	token, _ := env.signUp(t, "ada@example.com")

	conn := dial(t, srv, "/ws/roster", token)
	require.NoError(t, conn.WriteJSON(command{Type: "set_status", Status: "online"}))

	readUntil(t, conn, isToast("error", views.MsgStatusUpdateFailed))
}

// TestRosterSocket_OtherSessionSeesWrite covers: a write in one session is rendered in another
func TestRosterSocket_OtherSessionSeesWrite(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	tokenA, _ := env.signUp(t, "ada@example.com")
	tokenB, _ := env.signUp(t, "bob@example.com")

	connA := dial(t, srv, "/ws/roster", tokenA)
	connB := dial(t, srv, "/ws/roster", tokenB)
	require.Eventually(t, func() bool { return env.feed.Len() == 2 }, frameTimeout, 10*time.Millisecond)

	// ACT
	require.NoError(t, connA.WriteJSON(command{Type: "set_message", Message: "heads down"}))
	require.NoError(t, connA.WriteJSON(command{Type: "set_status", Status: "away"}))

	// ASSERT
	rendered := readUntil(t, connB, func(f frame) bool {
		return f.Type == frameRender && strings.Contains(f.HTML, "heads down")
	})
	assert.Contains(t, rendered.HTML, "coffee")
}

func TestRosterSocket_Share(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	token, accountID := env.signUp(t, "ada@example.com")

	conn := dial(t, srv, "/ws/roster", token)
	require.NoError(t, conn.WriteJSON(command{Type: "share"}))

	clip := readUntil(t, conn, func(f frame) bool { return f.Type == frameClipboard })
	assert.Equal(t, "https://status.example.com/profile/"+accountID, clip.Text)
	readUntil(t, conn, isToast("success", views.MsgShareCopied))
}

func TestRosterSocket_SignOut(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	token, _ := env.signUp(t, "ada@example.com")

	conn := dial(t, srv, "/ws/roster", token)
	require.NoError(t, conn.WriteJSON(command{Type: "sign_out"}))

	redirect := readUntil(t, conn, func(f frame) bool { return f.Type == frameRedirect })
	assert.Equal(t, "/login", redirect.URL)

	_, err := env.auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

// TestProfileSocket_MissingRecord covers: /profile/U2 with no record shows an error and keeps loading
func TestProfileSocket_MissingRecord(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	conn := dial(t, srv, "/ws/profile/U2", "")

	first := readUntil(t, conn, func(f frame) bool { return f.Type == frameRender })
	assert.Contains(t, first.HTML, "Loading...")
	readUntil(t, conn, isToast("error", views.MsgFetchProfileFailed))

	// the record appears later and the open page picks it up
	require.Eventually(t, func() bool { return env.feed.Len() == 1 }, frameTimeout, 10*time.Millisecond)
	_, err := env.statuses.Upsert(context.Background(), "U2", models.StatusUpdate{Status: models.StatusBusy, Message: "demo"})
	require.NoError(t, err)

	loaded := readUntil(t, conn, func(f frame) bool {
		return f.Type == frameRender && strings.Contains(f.HTML, "demo")
	})
	assert.Contains(t, loaded.HTML, "activity")
	assert.Contains(t, loaded.HTML, "Busy")
}

func TestSocketClose_ReleasesSubscription(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	conn := dial(t, srv, "/ws/profile/U1", "")
	require.Eventually(t, func() bool { return env.feed.Len() == 1 }, frameTimeout, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return env.feed.Len() == 0 }, frameTimeout, 10*time.Millisecond)
}
