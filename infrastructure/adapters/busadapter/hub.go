package busadapter

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks websocket connections grouped by path, so a StreamingSink can
// push a formatted result to every client currently watching that path.
type Hub struct {
	mu    sync.Mutex
	conns map[string][]*websocket.Conn
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: map[string][]*websocket.Conn{}}
}

// Upgrade promotes an HTTP request to a websocket connection subscribed
// under path.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, path string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.conns[path] = append(h.conns[path], conn)
	h.mu.Unlock()
	return nil
}

// Broadcast writes payload to every connection subscribed under path,
// pruning any connection that errors (assumed disconnected).
func (h *Hub) Broadcast(path string, payload []byte) error {
	h.mu.Lock()
	conns := h.conns[path]
	h.mu.Unlock()

	if len(conns) == 0 {
		return errNoSubscribers
	}

	var alive []*websocket.Conn
	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err == nil {
			alive = append(alive, c)
		}
	}

	h.mu.Lock()
	h.conns[path] = alive
	h.mu.Unlock()
	return nil
}
