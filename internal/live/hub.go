// Package live pushes match events to connected clients over WebSocket.
// Clients subscribe to individual matches; every heat result, rider change
// and validation event for a subscribed match is fanned out as JSON.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types pushed to clients.
const (
	EventHeatResult   = "heat_result"
	EventRidersUpdate = "riders_update"
	EventScoreUpdate  = "score_update"
	EventLaneChoice   = "lane_choice"
	EventValidation   = "validation"
)

// Event is one push message. MatchID routes it to subscribers.
type Event struct {
	Type    string      `json:"type"`
	MatchID string      `json:"match_id"`
	Data    interface{} `json:"data,omitempty"`
}

// Client is one connected WebSocket peer.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	matches map[string]bool
	mu      sync.Mutex
}

// Hub fans events out to subscribed clients.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewHub creates a Hub. Call Run in a goroutine before serving connections.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("ws client registered", "clients", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("ws client unregistered", "clients", n)

		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("marshal ws event", "error", err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if !client.subscribed(event.MatchID) {
					continue
				}
				select {
				case client.send <- payload:
				default:
					// Slow consumer: drop the connection rather than block.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for delivery. Never blocks the caller.
func (h *Hub) Publish(event *Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("ws broadcast queue full, dropping event", "type", event.Type, "match_id", event.MatchID)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer in front of the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a WebSocket connection and runs its
// read/write pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		matches: make(map[string]bool),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) subscribed(matchID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.matches) == 0 {
		return true
	}
	return c.matches[matchID]
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("ws read error", "error", err)
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// handleMessage processes subscribe/unsubscribe control frames from the
// client.
func (c *Client) handleMessage(message []byte) {
	var msg struct {
		Type     string   `json:"type"`
		MatchIDs []string `json:"match_ids"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch msg.Type {
	case "subscribe":
		for _, id := range msg.MatchIDs {
			c.matches[id] = true
		}
	case "unsubscribe":
		if len(msg.MatchIDs) == 0 {
			c.matches = make(map[string]bool)
			return
		}
		for _, id := range msg.MatchIDs {
			delete(c.matches, id)
		}
	}
}
