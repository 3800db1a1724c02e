package busadapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub, path string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.Upgrade(w, r, path))
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestBroadcastDeliversToSubscribedConnection(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "results/run-1")

	require.NoError(t, hub.Broadcast("results/run-1", []byte(`{"status":"completed"}`)))

	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"status":"completed"}`, string(payload))
}

func TestBroadcastWithNoSubscribersErrors(t *testing.T) {
	hub := NewHub()
	err := hub.Broadcast("results/missing", []byte("{}"))
	assert.ErrorIs(t, err, errNoSubscribers)
}

func TestStreamingSinkWriteResolvesPathAndBroadcasts(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "results/run-2")
	sink := NewStreamingSink(hub)

	path, err := sink.Write(context.Background(), map[string]interface{}{"status": "completed"}, "results/run-2")
	require.NoError(t, err)
	assert.Equal(t, "results/run-2", path)

	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), "completed")
}
