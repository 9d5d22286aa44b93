package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Outbound chan Event
}

// Hub fans events out to in-process SSE clients keyed by user. Slow clients
// get dropped messages rather than blocking the broadcaster.
type Hub struct {
	log *logger.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]map[uuid.UUID]*Client
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:     log.With("service", "RealtimeHub"),
		clients: map[uuid.UUID]map[uuid.UUID]*Client{},
	}
}

func (h *Hub) NewClient(userID uuid.UUID) *Client {
	c := &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Outbound: make(chan Event, 32),
	}
	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[uuid.UUID]*Client{}
	}
	h.clients[userID][c.ID] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) CloseClient(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	if byID, ok := h.clients[c.UserID]; ok {
		if _, ok := byID[c.ID]; ok {
			delete(byID, c.ID)
			close(c.Outbound)
		}
		if len(byID) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
}

// ServeHTTP streams the client's events until the request context ends or the
// client is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, c *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-c.Outbound:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("bad realtime event payload", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", ev.Type)
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[ev.UserID] {
		select {
		case c.Outbound <- ev:
		default:
			h.log.Warn("dropping realtime event for slow client",
				"client_id", c.ID,
				"user_id", c.UserID,
				"event", ev.Type,
			)
		}
	}
}
