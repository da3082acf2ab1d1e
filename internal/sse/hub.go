package sse

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dimitrije/taskboard/internal/models"
)

const (
	EventCountsUpdated    = "counts_updated"
	EventViewUpdated      = "view_updated"
	EventFormClosed       = "form_closed"
	EventFormError        = "form_error"
	EventNotice           = "notice"
	EventRelationsEvicted = "relations_evicted"
	EventPickerClosed     = "picker_closed"
	EventLoggedOut        = "logged_out"
)

// Event is one dashboard change. Kind is empty for events that concern the
// whole dashboard.
type Event struct {
	Type string      `json:"type"`
	Kind models.Kind `json:"kind,omitempty"`
	Data any         `json:"data,omitempty"`
}

// Client is one connected event stream. A client with no kinds receives
// every event.
type Client struct {
	ID    string
	Kinds map[models.Kind]bool
	Send  chan []byte
}

func (c *Client) wants(kind models.Kind) bool {
	if kind == "" || len(c.Kinds) == 0 {
		return true
	}
	return c.Kinds[kind]
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
	}
}

// Run dispatches events until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for _, client := range h.clients {
				if !client.wants(ev.Kind) {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds client. Once the hub has stopped the client is closed
// immediately.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Subscribe(clientID string, kind models.Kind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		if client.Kinds == nil {
			client.Kinds = make(map[models.Kind]bool)
		}
		client.Kinds[kind] = true
	}
}

func (h *Hub) Unsubscribe(clientID string, kind models.Kind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Kinds, kind)
	}
}

// Publish queues ev for every interested client. It never blocks; when the
// backlog is full the event is dropped.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
