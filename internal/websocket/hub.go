package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is a change notification pushed to connected clients, e.g. an item
// save or a new transfer
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	// Registered clients map: ClientID -> Client
	clients map[string]*Client

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Outbound event fan-out
	broadcast chan []byte

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[string]*Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.ClientID != "" {
				// IDs are minted per connection, so registration never collides
				h.clients[client.ClientID] = client
				log.Printf("WS client connected: %s", client.ClientID)
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if client.ClientID != "" {
				if _, ok := h.clients[client.ClientID]; ok {
					delete(h.clients, client.ClientID)
					close(client.send)
					log.Printf("WS client disconnected: %s", client.ClientID)
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastEvent pushes an event to every connected client
func (h *Hub) BroadcastEvent(eventType string, payload interface{}) {
	msg, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("WS broadcast buffer full, dropping %s event", eventType)
	}
}
