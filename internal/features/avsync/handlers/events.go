package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"log/slog"
)

// Event is one SSE payload: a site whose snapshot changed or was first
// populated. Consumers decide what to refresh.
type Event struct {
	SiteID string `json:"site_id"`
}

// EventsHandler fans snapshot-change notifications out to SSE clients. It is
// the first consumer of the monitor's notify hook.
type EventsHandler struct {
	logger *slog.Logger

	clientsMu    sync.Mutex
	clients      map[int]chan Event
	nextClientID int
}

func NewEventsHandler(logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		logger:  logger,
		clients: make(map[int]chan Event),
	}
}

// Broadcast delivers a site-changed event to every connected client.
// Slow clients are skipped rather than blocked on.
func (h *EventsHandler) Broadcast(siteID string) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for _, ch := range h.clients {
		select {
		case ch <- Event{SiteID: siteID}:
		default:
		}
	}
}

// Events handles GET requests on the SSE endpoint
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Register client
	h.clientsMu.Lock()
	h.nextClientID++
	clientID := h.nextClientID
	ch := make(chan Event, 16)
	h.clients[clientID] = ch
	clientCount := len(h.clients)
	h.clientsMu.Unlock()

	h.logger.Info("SSE client connected", "client_id", clientID, "total_clients", clientCount)

	ctx := r.Context()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	// Cleanup on disconnect
	defer func() {
		h.clientsMu.Lock()
		delete(h.clients, clientID)
		close(ch)
		clientCount := len(h.clients)
		h.clientsMu.Unlock()
		h.logger.Info("SSE client disconnected", "client_id", clientID, "total_clients", clientCount)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Send keepalive ping
			_, _ = w.Write([]byte(": ping\n\n"))
			fl.Flush()
		case event := <-ch:
			b, _ := json.Marshal(event)
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(b)
			_, _ = w.Write([]byte("\n\n"))
			fl.Flush()
		}
	}
}
