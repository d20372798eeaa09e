package socket

import (
	"context"
	"encoding/json"
	"sync"

	"jotion/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	ConnectedType        = "CONNECTED"         // Sent once the client joined its room
	DocumentCreatedType  = "DOCUMENT_CREATED"  // A document was added to the tree
	DocumentUpdatedType  = "DOCUMENT_UPDATED"  // Title/content/icon/cover/publish changed
	DocumentArchivedType = "DOCUMENT_ARCHIVED" // A subtree moved to trash
	DocumentRestoredType = "DOCUMENT_RESTORED" // A subtree came back from trash
	DocumentRemovedType  = "DOCUMENT_REMOVED"  // A document was permanently deleted

	sendBufferSize = 256
)

type WSMessage struct {
	Type    string          `json:"type"`
	DocID   string          `json:"document_id,omitempty"`
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans document change events out to every open connection of the owning user.
// Rooms are keyed by user id.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string
	Send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Publish hands msg to the hub loop. It blocks until Run receives it, and is a
// no-op once the hub has stopped.
func (h *Hub) Publish(msg WSMessage) {
	select {
	case h.Broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount reports how many connections userID currently has open.
func (h *Hub) ClientCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[userID])
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.UserID] == nil {
				h.Rooms[client.UserID] = make(map[*Client]bool)
			}
			h.Rooms[client.UserID][client] = true
			h.mu.Unlock()

			hello, _ := json.Marshal(WSMessage{Type: ConnectedType, UserID: client.UserID})
			client.Send <- hello

		case client := <-h.Unregister:
			h.mu.Lock()
			h.removeClient(client)
			h.mu.Unlock()

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.Rooms[msg.UserID] {
				select {
				case client.Send <- payload:
				default:
					// The client is lagging; drop it rather than block the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
					h.removeClient(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeClient must be called with h.mu held.
func (h *Hub) removeClient(client *Client) {
	room, ok := h.Rooms[client.UserID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.Rooms, client.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.Rooms {
		for client := range room {
			h.removeClient(client)
		}
	}
}
