package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents a connected WebSocket client
type Client struct {
	Hub  *Hub
	ID   uint
	Role string // "USER" or "WORKER"
	Conn *websocket.Conn
	Send chan []byte
	mu   sync.Mutex
}

// Hub manages all WebSocket connections
type Hub struct {
	// Registered clients keyed by user ID
	Clients map[uint]*Client

	// Broadcast channel for messages to all clients
	Broadcast chan *Message

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Message handlers
	MessageHandlers map[string]MessageHandler

	mu sync.RWMutex
}

// Message is the wire format pushed to clients
type Message struct {
	Type      string      `json:"type"`
	SenderID  uint        `json:"sender_id,omitempty"`
	Title     string      `json:"title,omitempty"`
	Content   string      `json:"content,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// MessageHandler handles different types of messages
type MessageHandler func(*Client, *Message) error

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	hub := &Hub{
		Clients:         make(map[uint]*Client),
		Broadcast:       make(chan *Message),
		Register:        make(chan *Client),
		Unregister:      make(chan *Client),
		MessageHandlers: make(map[string]MessageHandler),
	}

	hub.registerDefaultHandlers()

	return hub
}

// registerDefaultHandlers registers default message handlers
func (h *Hub) registerDefaultHandlers() {
	h.MessageHandlers["ping"] = h.handlePing
	h.MessageHandlers["ack"] = h.handleAck
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("🔌 Client registered: ID=%d, Role=%s", client.ID, client.Role)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client.ID]; ok {
				delete(h.Clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Client unregistered: ID=%d, Role=%s", client.ID, client.Role)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)
		}
	}
}

// broadcastMessage sends a message to all connected clients
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	for _, client := range h.Clients {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(h.Clients, client.ID)
		}
	}
}

// SendToUser sends a message to a specific user. Returns false when the user
// is not connected or their buffer is full.
func (h *Hub) SendToUser(userID uint, message *Message) bool {
	h.mu.RLock()
	client, exists := h.Clients[userID]
	h.mu.RUnlock()

	if !exists {
		return false
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return false
	}

	select {
	case client.Send <- data:
		return true
	default:
		log.Printf("⚠️ User %d's send buffer is full", userID)
		return false
	}
}

// SendNotification pushes a notification message to one user. Satisfies the
// notification service's push interface.
func (h *Hub) SendNotification(userID uint, title, content, notificationType string) bool {
	message := &Message{
		Type:      "notification",
		Title:     title,
		Content:   content,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"notification_type": notificationType,
		},
	}
	return h.SendToUser(userID, message)
}

// BroadcastJobPosted announces a newly posted job to all connected workers.
func (h *Hub) BroadcastJobPosted(job interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	message := &Message{
		Type:      "job_posted",
		Data:      job,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	for userID, client := range h.Clients {
		if client.Role != "WORKER" {
			continue
		}
		select {
		case client.Send <- data:
		default:
			log.Printf("⚠️ Worker %d's send buffer is full", userID)
		}
	}
}

// GetConnectedUsers returns a list of currently connected user IDs
func (h *Hub) GetConnectedUsers() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uint, 0, len(h.Clients))
	for userID := range h.Clients {
		users = append(users, userID)
	}
	return users
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.Clients[userID]
	return exists
}

// handlePing handles ping messages for connection health
func (h *Hub) handlePing(client *Client, message *Message) error {
	pongMessage := &Message{
		Type:      "pong",
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(pongMessage)
	if err != nil {
		return err
	}

	select {
	case client.Send <- data:
	default:
		log.Printf("⚠️ Could not send pong to user %d", client.ID)
	}

	return nil
}

// handleAck acknowledges client-side receipt of a pushed notification.
func (h *Hub) handleAck(client *Client, message *Message) error {
	log.Printf("👁️ Notification ack from user %d", client.ID)
	return nil
}
