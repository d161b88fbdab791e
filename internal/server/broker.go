package server

import (
	"encoding/json"
	"sync"
)

// Event is the payload published to a client's subscribers.
type Event struct {
	Type string     `json:"type"`
	View *ViewState `json:"view,omitempty"`
}

// Broker is an in-process pub/sub for SSE events, keyed by client ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given client.
func (b *Broker) Subscribe(clientID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[clientID] == nil {
		b.subs[clientID] = make(map[chan []byte]struct{})
	}
	b.subs[clientID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(clientID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[clientID], ch)
	if len(b.subs[clientID]) == 0 {
		delete(b.subs, clientID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given client.
func (b *Broker) Publish(clientID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[clientID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
