package handlers

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/internal/chat"
	"github.com/nadeemmaahmud/sellingApp/internal/ws"
)

type MessageHandler struct {
	DB        *gorm.DB
	Directory *chat.Directory
	Store     *chat.MessageStore
	Hub       *ws.Hub
}

func NewMessageHandler(db *gorm.DB, directory *chat.Directory, store *chat.MessageStore, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{DB: db, Directory: directory, Store: store, Hub: hub}
}

// ListMessages returns a room's recent history, oldest first.
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	roomID := c.QueryInt("chat_room_id")
	if roomID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "chat_room_id is required"})
	}

	room, err := h.Directory.GetAuthorized(uint(roomID), user)
	if err != nil {
		return errorJSON(c, err)
	}

	messages, err := h.Store.History(room, c.QueryInt("limit"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// CreateMessageRequest defines the payload for the REST message path.
type CreateMessageRequest struct {
	ChatRoomID uint   `json:"chat_room_id"`
	Message    string `json:"message"`
}

// CreateMessage persists a message over REST and pushes it to the room's
// live connections, so REST and WebSocket senders see one stream.
func (h *MessageHandler) CreateMessage(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	room, err := h.Directory.GetAuthorized(req.ChatRoomID, user)
	if err != nil {
		return errorJSON(c, err)
	}

	msg, err := h.Store.Append(room, user, req.Message)
	if err != nil {
		return errorJSON(c, err)
	}

	frame := ws.MessageFrame{
		Type:    ws.FrameChatMessage,
		Message: ws.NewMessagePayload(msg, nil),
	}
	if data, err := json.Marshal(frame); err == nil {
		h.Hub.Publish(ws.RoomGroup(room.ID), data)
	} else {
		log.Printf("Failed to marshal chat_message frame: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

// MarkReadRequest identifies the room whose counterpart messages get
// flagged read.
type MarkReadRequest struct {
	ChatRoomID uint `json:"chat_room_id"`
}

// MarkRead flags everything the counterpart wrote in the room as read.
// Idempotent: a second call reports zero.
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req MarkReadRequest
	if err := c.BodyParser(&req); err != nil || req.ChatRoomID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "chat_room_id is required"})
	}

	room, err := h.Directory.GetAuthorized(req.ChatRoomID, user)
	if err != nil {
		return errorJSON(c, err)
	}

	count, err := h.Store.MarkRead(room, user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark messages read"})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("%d messages marked as read", count),
		"count":   count,
	})
}

// UnreadCount reports how many messages are waiting for the caller
// across their active rooms.
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	count, err := h.Store.UnreadCount(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count unread messages"})
	}
	return c.JSON(fiber.Map{"unread_count": count})
}

// ChatUsers gives staff an overview of their active conversations with
// per-room unread counts, last activity first.
func (h *MessageHandler) ChatUsers(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	partners, err := h.Directory.ChatPartners(user)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"users": partners})
}
