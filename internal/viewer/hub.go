package viewer

import (
	"log/slog"
	"sync"
)

// client is one connected websocket viewer.
type client struct {
	id   string
	send chan []byte
	done chan struct{}
}

// hub tracks connected clients and fans lines out to them.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func newHub() *hub {
	return &hub{clients: make(map[string]*client)}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.id] = c
	slog.Info("viewer client connected", "clientID", c.id, "clients", len(h.clients))
}

// unregister removes a client from the hub. The client's done channel is
// closed by the handler that created the client, not here.
func (h *hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		slog.Info("viewer client disconnected", "clientID", id, "clients", len(h.clients))
	}
}

// broadcast sends line to every connected client. Slow clients whose send
// buffer is full miss the line rather than stalling the rest.
func (h *hub) broadcast(line []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.send <- line:
		case <-c.done:
			// Client is going away.
		default:
			slog.Warn("viewer client send buffer full, dropping line", "clientID", c.id)
		}
	}
}
