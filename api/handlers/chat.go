package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/config"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatMessage is one message relayed within a match chat room
type ChatMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId,omitempty"`
	SenderID  string `json:"senderId,omitempty"`
	Text      string `json:"text,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// chatClient wraps one peer connection. gorilla/websocket supports a single
// concurrent writer per connection, and every peer's read loop plus join
// announcements broadcast into the same room, so writeMu serializes sends.
type chatClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *chatClient) send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ChatHub relays messages between the owner and finder of a matched bike.
// Rooms are keyed by the chatRoomId allocated when a match enters chatting.
type ChatHub struct {
	DB databases.MatchDatabase

	mu    sync.RWMutex
	rooms map[string]map[*chatClient]bool
}

// NewChatHub creates a new chat hub backed by the match collection
func NewChatHub(db databases.MatchDatabase) *ChatHub {
	return &ChatHub{
		DB:    db,
		rooms: make(map[string]map[*chatClient]bool),
	}
}

func (h *ChatHub) join(roomID string, conn *websocket.Conn) *chatClient {
	client := &chatClient{conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*chatClient]bool)
	}
	h.rooms[roomID][client] = true
	return client
}

func (h *ChatHub) leave(roomID string, client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[roomID], client)
	if len(h.rooms[roomID]) == 0 {
		delete(h.rooms, roomID)
	}
}

// Broadcast sends a message to every connection in a room
func (h *ChatHub) Broadcast(roomID string, msg ChatMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		zap.S().Errorw("failed to marshal chat message", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*chatClient, 0, len(h.rooms[roomID]))
	for client := range h.rooms[roomID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(data); err != nil {
			zap.S().Debugw("dropping dead chat connection", "roomId", roomID, "error", err)
			h.leave(roomID, client)
			client.conn.Close()
		}
	}
}

// validRoom verifies that the room belongs to a match that has entered chat
func (h *ChatHub) validRoom(r *http.Request, roomID string) error {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	match, err := h.DB.FindOne(ctx, bson.M{"chatRoomId": roomID})
	if err != nil {
		return fmt.Errorf("no match for chat room %s: %w", roomID, err)
	}
	if match.Status != models.MatchStatusChatting && match.Status != models.MatchStatusResolved {
		return fmt.Errorf("match %s has not entered chat", match.ID.Hex())
	}
	return nil
}

// HandleChat upgrades the connection and relays messages within the room
// until the client disconnects
func (h *ChatHub) HandleChat(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		config.ErrorStatus("query param room is required", http.StatusBadRequest, w, fmt.Errorf("query param room is required"))
		return
	}
	senderID := r.URL.Query().Get("sender")

	if err := h.validRoom(r, roomID); err != nil {
		config.ErrorStatus("chat room not found", http.StatusNotFound, w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("failed to upgrade chat connection", "error", err)
		return
	}

	client := h.join(roomID, conn)
	zap.S().Infow("chat connection opened", "roomId", roomID, "senderId", senderID)

	h.Broadcast(roomID, ChatMessage{
		Type:      "joined",
		RoomID:    roomID,
		SenderID:  senderID,
		Timestamp: time.Now().UnixMilli(),
	})

	defer func() {
		h.leave(roomID, client)
		conn.Close()
		zap.S().Infow("chat connection closed", "roomId", roomID, "senderId", senderID)
	}()

	for {
		var msg ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Debugw("chat read error", "roomId", roomID, "error", err)
			}
			return
		}
		msg.Type = "message"
		msg.RoomID = roomID
		if msg.SenderID == "" {
			msg.SenderID = senderID
		}
		if msg.Timestamp == 0 {
			msg.Timestamp = time.Now().UnixMilli()
		}
		h.Broadcast(roomID, msg)
	}
}
