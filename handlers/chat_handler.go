package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/internal/chat"
	"github.com/nadeemmaahmud/sellingApp/internal/ws"
	"github.com/nadeemmaahmud/sellingApp/models"
)

type ChatHandler struct {
	Hub       *ws.Hub
	DB        *gorm.DB
	Directory *chat.Directory
	Store     *chat.MessageStore
}

func NewChatHandler(hub *ws.Hub, db *gorm.DB, directory *chat.Directory, store *chat.MessageStore) *ChatHandler {
	return &ChatHandler{Hub: hub, DB: db, Directory: directory, Store: store}
}

// WebSocketUpgradeMiddleware ensures the client is trying to upgrade to WebSocket
func (h *ChatHandler) WebSocketUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// roomSession authorizes a room-keyed connect before anything is
// subscribed: the principal must resolve to an active user and be a
// participant of the named room.
func (h *ChatHandler) roomSession(principal interface{}, roomParam string) (*models.User, *models.ChatRoom, error) {
	user, err := h.connUser(principal)
	if err != nil {
		return nil, nil, err
	}

	roomID, err := strconv.Atoi(roomParam)
	if err != nil || roomID <= 0 {
		return nil, nil, fmt.Errorf("%w: invalid room id %q", chat.ErrValidation, roomParam)
	}

	room, err := h.Directory.GetAuthorized(uint(roomID), user)
	if err != nil {
		return nil, nil, err
	}
	return user, room, nil
}

// supportSession resolves the pairwise connect: staff get their own
// group, everyone else is paired with an available admin and their
// support room is auto-provisioned on first contact.
func (h *ChatHandler) supportSession(principal interface{}) (*models.User, *models.ChatRoom, string, error) {
	user, err := h.connUser(principal)
	if err != nil {
		return nil, nil, "", err
	}

	if user.IsStaff {
		return user, nil, ws.AdminGroup(user.ID), nil
	}

	admin, err := h.Directory.FirstAvailableAdmin()
	if err != nil {
		return nil, nil, "", err
	}
	room, _, err := h.Directory.ResolveOrCreate(user.ID, admin.ID, "Support", nil)
	if err != nil {
		return nil, nil, "", err
	}
	return user, room, ws.PairGroup(user.ID, admin.ID), nil
}

// RoomHandler serves the room-keyed endpoint: the caller names an
// explicit room id and must be one of its two participants. Any failure
// before subscription closes the socket without a frame.
func (h *ChatHandler) RoomHandler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		user, room, err := h.roomSession(c.Locals("user_id"), c.Params("roomID"))
		if err != nil {
			log.Printf("Refused websocket connection: %v", err)
			c.Close()
			return
		}

		client := &ws.Client{
			Hub:       h.Hub,
			Conn:      c,
			Send:      make(chan []byte, 256),
			ID:        uuid.New().String(),
			User:      *user,
			Room:      room,
			Group:     ws.RoomGroup(room.ID),
			Directory: h.Directory,
			Store:     h.Store,
		}

		h.Hub.Subscribe(client.Group, client)

		history, err := h.Store.History(room, 0)
		if err != nil {
			log.Printf("Failed to load history for room %d: %v", room.ID, err)
		} else {
			h.sendHistory(client, history)
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// SupportHandler serves the legacy pairwise endpoint: no room id in the
// URL. Staff subscribe to their own group and address users per frame;
// users are paired with an available admin and their room is
// auto-provisioned on first contact.
func (h *ChatHandler) SupportHandler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		user, room, group, err := h.supportSession(c.Locals("user_id"))
		if err != nil {
			log.Printf("Refused support connection: %v", err)
			c.Close()
			return
		}

		client := &ws.Client{
			Hub:       h.Hub,
			Conn:      c,
			Send:      make(chan []byte, 256),
			ID:        uuid.New().String(),
			User:      *user,
			Room:      room,
			Group:     group,
			Pairwise:  true,
			Directory: h.Directory,
			Store:     h.Store,
		}

		h.Hub.Subscribe(client.Group, client)

		history, err := h.Store.HistoryFor(user, 0)
		if err != nil {
			log.Printf("Failed to load history for user %d: %v", user.ID, err)
		} else {
			h.sendHistory(client, history)
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// connUser resolves the authenticated principal stashed by the auth
// middleware. A missing or stale principal refuses the connect.
func (h *ChatHandler) connUser(principal interface{}) (*models.User, error) {
	userID, ok := principal.(uint)
	if !ok || userID == 0 {
		return nil, fmt.Errorf("%w: no authenticated principal", chat.ErrUserNotFound)
	}

	var user models.User
	if err := h.DB.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		return nil, fmt.Errorf("%w: user %d", chat.ErrUserNotFound, userID)
	}
	return &user, nil
}

func (h *ChatHandler) sendHistory(client *ws.Client, history []models.ChatMessage) {
	data, err := json.Marshal(ws.NewHistoryFrame(history))
	if err != nil {
		log.Printf("Failed to marshal chat_history frame: %v", err)
		return
	}
	client.TrySend(data)
}
