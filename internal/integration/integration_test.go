package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/minstant/messenger/internal/domain"
	"github.com/minstant/messenger/internal/handler"
	"github.com/minstant/messenger/internal/hub"
	"github.com/minstant/messenger/internal/store"
	"github.com/minstant/messenger/internal/token"
)

type fixture struct {
	server   *httptest.Server
	store    *store.SQLiteStore
	registry *hub.Registry
	tokens   *token.Service
	revoked  *token.RevocationRegistry
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tokens := token.NewService([]byte("access-secret"), []byte("refresh-secret"))
	revoked := token.NewRevocationRegistry()
	registry := hub.NewRegistry()
	broadcaster := hub.NewBroadcaster(s, registry)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.Health())
	mux.HandleFunc("/api/login", handler.Login(s, tokens, 10*time.Minute, 24*time.Hour))
	mux.HandleFunc("/api/token/refresh", handler.Refresh(tokens, revoked, 10*time.Minute))
	mux.HandleFunc("/api/token/logout", handler.Logout(revoked))
	mux.HandleFunc("/api/users", handler.Users(s, tokens))
	mux.HandleFunc("/api/rooms", handler.Rooms(s, tokens))
	mux.HandleFunc("/api/rooms/exists", handler.RoomExists(s, tokens))
	mux.HandleFunc("/api/rooms/", handler.RoomSub(s, tokens, 50))
	mux.HandleFunc("/ws", handler.ServeWS(registry, broadcaster, tokens))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &fixture{server: server, store: s, registry: registry, tokens: tokens, revoked: revoked}
}

func (f *fixture) createUser(t *testing.T, username, password string) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(f.server.URL+"/api/users", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// login returns the access token and the refresh cookie.
func (f *fixture) login(t *testing.T, username, password string) (string, *http.Cookie) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(f.server.URL+"/api/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tr struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))

	var refresh *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}
	require.NotNil(t, refresh)
	return tr.AccessToken, refresh
}

func (f *fixture) dialWS(t *testing.T, room, access string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?room=" + room + "&token=" + access
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForCount(t *testing.T, reg *hub.Registry, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if reg.ParticipantCount(room) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %s: expected %d participants, got %d", room, want, reg.ParticipantCount(room))
}

func TestLoginToMessageScenario(t *testing.T) {
	req := require.New(t)
	f := setup(t)

	f.createUser(t, "alice", "pass-a")
	f.createUser(t, "bob", "pass-b")

	aliceAccess, _ := f.login(t, "alice", "pass-a")
	bobAccess, _ := f.login(t, "bob", "pass-b")

	alice := f.dialWS(t, "42", aliceAccess)
	bob := f.dialWS(t, "42", bobAccess)
	waitForCount(t, f.registry, "42", 2)

	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat","body":"hi"}`)))

	bob.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := bob.ReadMessage()
	req.NoError(err)
	var out domain.Outbound
	req.NoError(json.Unmarshal(data, &out))
	req.Equal("alice", out.Sender)
	req.Equal("42", out.RoomID)
	req.Equal("hi", out.Body)

	// Persisted exactly once, readable through the history route.
	history, err := f.store.History("42", 50)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("hi", history[0].Body)
}

func TestRevocationScenario(t *testing.T) {
	req := require.New(t)
	f := setup(t)

	f.createUser(t, "alice", "pass-a")
	_, refresh := f.login(t, "alice", "pass-a")

	// Refresh works before logout.
	r, _ := http.NewRequest(http.MethodPost, f.server.URL+"/api/token/refresh", nil)
	r.AddCookie(refresh)
	resp, err := http.DefaultClient.Do(r)
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	// Logout revokes the refresh token.
	r, _ = http.NewRequest(http.MethodPost, f.server.URL+"/api/token/logout", nil)
	r.AddCookie(refresh)
	resp, err = http.DefaultClient.Do(r)
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusNoContent, resp.StatusCode)

	// The same refresh token is no longer honored, uniformly.
	r, _ = http.NewRequest(http.MethodPost, f.server.URL+"/api/token/refresh", nil)
	r.AddCookie(refresh)
	resp, err = http.DefaultClient.Do(r)
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusNotAcceptable, resp.StatusCode)
}

func TestRejectedAdmissionLeavesRegistryUntouched(t *testing.T) {
	req := require.New(t)
	f := setup(t)

	expired, err := f.tokens.IssueAccess("alice", -time.Minute)
	req.NoError(err)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?room=7&token=" + expired
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	req.Error(err)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	req.Zero(f.registry.ParticipantCount("7"))
}
