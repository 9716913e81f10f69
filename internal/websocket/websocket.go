package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/services"
)

// Message types pushed to clients
const (
	TypeVotingStatus   = "voting_status"
	TypeCountdown      = "countdown"
	TypeWinnerDeclared = "winner_declared"
	TypeScoresUpdated  = "scores_updated"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	settings   services.SettingsServicer
	upgrader   websocket.Upgrader
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

// New creates a new Hub. allowedOrigins restricts which browser origins may
// connect; an empty list or "*" accepts any origin.
func New(log logger.Logger, settings services.SettingsServicer, allowedOrigins ...string) *Hub {
	h := &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		settings:   settings,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[strings.TrimRight(strings.ToLower(o), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser client
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return set[strings.ToLower(u.Scheme+"://"+u.Host)]
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)

			// New clients get the current voting status straight away
			go h.sendWelcome(client)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) sendWelcome(client *Client) {
	ctx := context.Background()
	open, _ := h.settings.IsVotingOpen(ctx)
	msg := models.WSMessage{Type: TypeVotingStatus, Payload: votingPayload(open, h.closeTimeString(ctx))}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if h.clients[client] {
		select {
		case client.send <- msg:
		default:
		}
	}
}

func (h *Hub) closeTimeString(ctx context.Context) string {
	t, err := h.settings.GetVotingCloseTime(ctx)
	if err != nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- models.WSMessage{
		Type:    msgType,
		Payload: payload,
	}
}

func votingPayload(open bool, closeTime string) map[string]interface{} {
	return map[string]interface{}{
		"open":       open,
		"close_time": closeTime,
	}
}

// BroadcastVotingStatus implements services.Broadcaster
func (h *Hub) BroadcastVotingStatus(open bool, closeTime string) {
	h.BroadcastMessage(TypeVotingStatus, votingPayload(open, closeTime))
}

// BroadcastWinnerDeclared implements services.Broadcaster. An empty
// nomineeID means the winner was cleared.
func (h *Hub) BroadcastWinnerDeclared(categoryID, nomineeID string) {
	h.BroadcastMessage(TypeWinnerDeclared, map[string]interface{}{
		"category_id": categoryID,
		"nominee_id":  nomineeID,
	})
}

// BroadcastScoresUpdated implements services.Broadcaster
func (h *Hub) BroadcastScoresUpdated(summary services.RecomputeSummary) {
	h.BroadcastMessage(TypeScoresUpdated, map[string]interface{}{
		"scopes":      summary.Scopes,
		"scored":      summary.Scored,
		"finished_at": summary.FinishedAt.Format(time.RFC3339),
	})
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		// Clients only listen; anything they send is logged and dropped
		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, sendBuffer),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// StartVotingCountdown ticks once a second until ctx is cancelled, pushing
// countdown updates and closing voting when the timer runs out
func (h *Hub) StartVotingCountdown(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Voting countdown stopped")
			return
		case <-ticker.C:
			h.checkAndUpdateCountdown(ctx)
		}
	}
}

// checkAndUpdateCountdown checks the timer and broadcasts updates
func (h *Hub) checkAndUpdateCountdown(ctx context.Context) {
	closeTime, err := h.settings.GetVotingCloseTime(ctx)
	if err != nil || closeTime.IsZero() {
		return
	}

	now := time.Now()
	if !now.Before(closeTime) {
		open, _ := h.settings.IsVotingOpen(ctx)
		if !open {
			h.settings.ClearTimer(ctx)
			return
		}
		if err := h.settings.SetVotingOpen(ctx, false); err != nil {
			h.log.Error("Failed to close voting", "error", err)
			return
		}
		h.settings.ClearTimer(ctx)
		h.log.Info("Voting automatically closed by timer")
		h.BroadcastVotingStatus(false, "")
		return
	}

	h.BroadcastMessage(TypeCountdown, map[string]interface{}{
		"seconds_remaining": int(closeTime.Sub(now).Seconds()),
		"close_time":        closeTime.Format(time.RFC3339),
	})
}
