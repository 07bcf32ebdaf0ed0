package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/steam-tracker/internal/domain"
)

// Message types
const (
	MessageTypeLookup       = "lookup"
	MessageTypeTitleLookup  = "title_lookup"
	MessageTypeSubscribe    = "subscribe"
	MessageTypeUnsubscribe  = "unsubscribe"
	MessageTypeSubscribed   = "subscribed"
	MessageTypeUnsubscribed = "unsubscribed"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"
)

// Message is the envelope for every frame sent to clients. Messages with a
// TitleID go to that title's subscribers only.
type Message struct {
	Type      string      `json:"type"`
	TitleID   string      `json:"title_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub tracks connected clients and their title subscriptions
type Hub struct {
	// Subscribed clients by title ID
	clients map[string]map[*Client]bool

	// All connected clients
	allClients map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	broadcast   chan *Message
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest

	mu     sync.RWMutex
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

type subscriptionRequest struct {
	client  *Client
	titleID string
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		allClients:  make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		subscribe:   make(chan *subscriptionRequest, 64),
		unsubscribe: make(chan *subscriptionRequest, 64),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("WebSocket hub stopping")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.allClients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.id)

		case client := <-h.unregister:
			h.removeClient(client)
			h.logger.Debug("client unregistered", "client_id", client.id)

		case req := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.allClients[req.client]; ok {
				if _, ok := h.clients[req.titleID]; !ok {
					h.clients[req.titleID] = make(map[*Client]bool)
				}
				h.clients[req.titleID][req.client] = true
			}
			h.mu.Unlock()
			h.logger.Debug("client subscribed", "client_id", req.client.id, "title_id", req.titleID)

		case req := <-h.unsubscribe:
			h.mu.Lock()
			h.dropSubscription(req.client, req.titleID)
			h.mu.Unlock()
			h.logger.Debug("client unsubscribed", "client_id", req.client.id, "title_id", req.titleID)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Stop stops the hub
func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.allClients[client]; !ok {
		return
	}
	delete(h.allClients, client)
	for titleID := range h.clients {
		h.dropSubscription(client, titleID)
	}
	close(client.send)
}

// dropSubscription must be called with mu held.
func (h *Hub) dropSubscription(client *Client, titleID string) {
	clients, ok := h.clients[titleID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, titleID)
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", "error", err)
		return
	}

	targets := h.allClients
	if message.TitleID != "" {
		targets = h.clients[message.TitleID]
	}

	for client := range targets {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client buffer full, skipping", "client_id", client.id)
		}
	}
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast channel full, dropping message", "type", message.Type)
	}
}

// BroadcastLookup sends event to every client, and additionally a
// title_lookup message to subscribers of the event's title.
func (h *Hub) BroadcastLookup(event domain.LookupEvent) {
	now := time.Now()

	h.enqueue(&Message{
		Type:      MessageTypeLookup,
		Data:      event,
		Timestamp: now,
	})

	if event.TitleID != "" {
		h.enqueue(&Message{
			Type:      MessageTypeTitleLookup,
			TitleID:   event.TitleID,
			Data:      event,
			Timestamp: now,
		})
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Subscribe adds a client to a title's subscribers
func (h *Hub) Subscribe(client *Client, titleID string) {
	h.subscribe <- &subscriptionRequest{client: client, titleID: titleID}
}

// Unsubscribe removes a client from a title's subscribers
func (h *Hub) Unsubscribe(client *Client, titleID string) {
	h.unsubscribe <- &subscriptionRequest{client: client, titleID: titleID}
}

// GetSubscriberCount returns the number of subscribers for a title
func (h *Hub) GetSubscriberCount(titleID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[titleID])
}

// GetTotalConnections returns the total number of connected clients
func (h *Hub) GetTotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.allClients)
}
