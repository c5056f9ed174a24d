// Package websocket implements a Hub for pushing live match status to spectators.
// WebSockets let the server push data to clients instantly, so players following a
// match see the status change the moment a score is entered, without polling the API.
package websocket

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Client represents a single connected WebSocket client watching one match.
type Client struct {
	MatchID string      // Which match this client is watching; used to route messages
	Send    chan []byte // Buffered outgoing messages; the Hub writes here, the connection's writer drains it
}

// NewClient creates a client for a match with a buffered send channel.
func NewClient(matchID string) *Client {
	return &Client{MatchID: matchID, Send: make(chan []byte, 16)}
}

// Message is a unit of data to broadcast to everyone watching a specific match.
type Message struct {
	MatchID string
	Data    []byte // Typically a JSON-encoded match status
}

// Hub manages all active WebSocket connections, grouped by match ID.
// It runs in its own goroutine and processes registration, unregistration, and
// broadcast events through channels, so the clients map is only modified on that goroutine.
type Hub struct {
	// clients is a nested map: matchID -> set of clients.
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// mu guards clients for Count, which is called from other goroutines.
	mu sync.RWMutex

	log  *slog.Logger
	live prometheus.Gauge
}

// NewHub creates a Hub. live tracks the number of connected clients.
// The broadcast channel is buffered so score handlers don't block if the Hub is briefly busy.
func NewHub(log *slog.Logger, live prometheus.Gauge) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
		live:       live,
	}
}

// Run is the Hub's main event loop. Start it in a goroutine ("go hub.Run()").
// It returns after Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.MatchID] == nil {
				h.clients[client.MatchID] = make(map[*Client]bool)
			}
			h.clients[client.MatchID][client] = true
			h.live.Inc()
			h.mu.Unlock()
			h.log.Debug("live client connected", "match_id", client.MatchID)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients[msg.MatchID] {
				select {
				case client.Send <- msg.Data:
				default:
					// Send buffer is full: the client is too slow to keep up
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			// Removed here rather than through h.unregister, which only this loop reads
			for _, client := range slow {
				h.log.Debug("dropping slow live client", "match_id", client.MatchID)
				h.remove(client)
			}

		case <-h.done:
			return
		}
	}
}

// remove deletes the client and closes its Send channel, which tells the writer to stop.
// Must only be called from Run.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.MatchID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.MatchID)
	}
	h.live.Dec()
}

// BroadcastToMatch sends data to all clients currently watching the given match.
func (h *Hub) BroadcastToMatch(matchID string, data []byte) {
	select {
	case h.broadcast <- &Message{MatchID: matchID, Data: data}:
	case <-h.done:
	}
}

// Register adds a client to the Hub so it starts receiving broadcasts for its match.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the Hub. Unregistering twice is harmless.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count returns how many clients are watching a match.
func (h *Hub) Count(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[matchID])
}

// Stop ends Run. Calls to Register, Unregister and BroadcastToMatch return immediately afterwards.
func (h *Hub) Stop() {
	close(h.done)
}
