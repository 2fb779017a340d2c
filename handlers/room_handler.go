package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/internal/chat"
	"github.com/nadeemmaahmud/sellingApp/internal/ws"
)

type RoomHandler struct {
	DB        *gorm.DB
	Directory *chat.Directory
	Presence  *ws.Presence
}

func NewRoomHandler(db *gorm.DB, directory *chat.Directory, presence *ws.Presence) *RoomHandler {
	return &RoomHandler{DB: db, Directory: directory, Presence: presence}
}

// CreateRoomRequest defines the payload for opening a support room.
type CreateRoomRequest struct {
	UserID      uint   `json:"user_id"`
	Subject     string `json:"subject"`
	RelatedType string `json:"related_type,omitempty"` // unit, service, sell
	RelatedID   uint   `json:"related_id,omitempty"`
}

// CreateRoom opens (or reactivates) a room between the calling operator
// and a user, optionally attached to one of the user's fleet entities.
// Repeating the call with the same (user, entity) pair returns the same
// room with 200 instead of 201.
func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	admin, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if !admin.IsStaff {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only staff can create chat rooms"})
	}

	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	var related *chat.EntityRef
	if req.RelatedType != "" || req.RelatedID != 0 {
		if req.RelatedType == "" || req.RelatedID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "related_type and related_id must be provided together"})
		}
		related = &chat.EntityRef{Kind: req.RelatedType, ID: req.RelatedID}
	}

	room, created, err := h.Directory.ResolveOrCreate(req.UserID, admin.ID, req.Subject, related)
	if err != nil {
		return errorJSON(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"room": room, "created": created})
}

// ListRooms returns the caller's active rooms, most recently active
// first.
func (h *RoomHandler) ListRooms(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	rooms, err := h.Directory.ListFor(user)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"rooms": rooms})
}

// UpdateRoomRequest toggles a room open or closed.
type UpdateRoomRequest struct {
	IsActive *bool `json:"is_active"`
}

// UpdateRoom lets the room's admin soft-close or reopen it.
func (h *RoomHandler) UpdateRoom(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	roomID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID"})
	}

	var req UpdateRoomRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "is_active is required"})
	}

	room, err := h.Directory.SetActive(uint(roomID), user, *req.IsActive)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"room": room})
}

// OnlineUsers reports who is currently connected to the room's broadcast
// group. With presence disabled the list is empty.
func (h *RoomHandler) OnlineUsers(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	roomID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID"})
	}

	room, err := h.Directory.GetAuthorized(uint(roomID), user)
	if err != nil {
		return errorJSON(c, err)
	}

	online, err := h.Presence.Online(c.Context(), ws.RoomGroup(room.ID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch online users"})
	}
	return c.JSON(fiber.Map{"room_id": room.ID, "online": online})
}
