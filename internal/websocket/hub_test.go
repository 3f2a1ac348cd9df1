package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(id string) *Client {
	return &Client{ClientID: id, send: make(chan []byte, 4)}
}

func TestHubBroadcastReachesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient("web_a")
	b := newTestClient("web_b")
	hub.register <- a
	hub.register <- b

	hub.BroadcastEvent("item.updated", map[string]uint{"id": 7})

	for _, client := range []*Client{a, b} {
		select {
		case msg := <-client.send:
			var event Event
			if err := json.Unmarshal(msg, &event); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if event.Type != "item.updated" {
				t.Errorf("event type = %q", event.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %s never received the event", client.ClientID)
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient("web_c")
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed channel, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed after unregister")
	}

	// Unregistering again must be a no-op, not a double close
	hub.unregister <- client

	// Broadcasts after the client left must not panic either
	hub.BroadcastEvent("item.deleted", map[string]uint{"id": 8})
	time.Sleep(50 * time.Millisecond)
}
