package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/caro-backend/internal/entity"
	"github.com/rocketscienceinc/caro-backend/internal/repository"
	"github.com/rocketscienceinc/caro-backend/internal/usecase"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := usecase.NewRegistry(logger, repository.NewMemoryRoomRepository(), usecase.RegistryConfig{})
	router := NewRouter(logger, registry, 0)
	go router.Run(ctx)

	server := httptest.NewServer(New(logger, router, opts).Handler(ctx))
	t.Cleanup(server.Close)

	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = ws.Close() })

	return ws
}

// readUntil reads frames until one with the wanted action arrives.
func readUntil(t *testing.T, ws *websocket.Conn, action string) Message {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))

	for {
		var message Message
		require.NoError(t, ws.ReadJSON(&message))

		if message.Action == action {
			return message
		}
	}
}

func TestServer_Match(t *testing.T) {
	// Given: two clients connected to a running server
	server := newTestServer(t, Options{})
	alice := dial(t, server)
	bob := dial(t, server)

	// When: alice creates a room and bob joins it
	require.NoError(t, alice.WriteJSON(map[string]any{
		"action":  ActionCreateRoom,
		"payload": map[string]string{"playerName": "Alice"},
	}))
	roomID := payloadOf[RoomCreatedPayload](t, readUntil(t, alice, ActionRoomCreated)).RoomID

	require.NoError(t, bob.WriteJSON(map[string]any{
		"action":  ActionJoinRoom,
		"payload": map[string]string{"playerName": "Bob", "roomId": strings.ToLower(roomID)},
	}))

	// Then: both see the game start
	for _, ws := range []*websocket.Conn{alice, bob} {
		view := payloadOf[entity.RoomView](t, readUntil(t, ws, ActionGameStarted))
		assert.Equal(t, roomID, view.ID)
		assert.Equal(t, entity.StatusPlaying, view.Status)
	}

	// When: alice plays the centre
	require.NoError(t, alice.WriteJSON(map[string]any{
		"action":  ActionMakeMove,
		"payload": map[string]int{"row": 7, "col": 7},
	}))

	// Then: bob receives the updated board
	view := payloadOf[entity.RoomView](t, readUntil(t, bob, ActionGameUpdate))
	assert.Equal(t, entity.PlayerX, view.Board[7][7])
	assert.Equal(t, entity.PlayerO, view.Turn)

	// When: bob's socket closes
	require.NoError(t, bob.Close())

	// Then: alice is told and waits for a new opponent
	left := payloadOf[PlayerLeftPayload](t, readUntil(t, alice, ActionPlayerLeft))
	assert.Equal(t, entity.StatusWaiting, left.Room.Status)
	assert.Len(t, left.Players, 1)
}

func TestServer_CheckOrigin(t *testing.T) {
	server := newTestServer(t, Options{AllowedOrigins: []string{"https://caro.example"}})
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	t.Run("Allowed origin", func(t *testing.T) {
		header := http.Header{"Origin": []string{"https://caro.example"}}

		ws, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.NoError(t, err)
		_ = resp.Body.Close()
		_ = ws.Close()
	})

	t.Run("Foreign origin", func(t *testing.T) {
		header := http.Header{"Origin": []string{"https://evil.example"}}

		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
