package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/internal/chat"
	"github.com/nadeemmaahmud/sellingApp/models"
)

// currentUser loads the authenticated principal stashed by the auth
// middleware.
func currentUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	userID, ok := c.Locals("user_id").(uint)
	if !ok || userID == 0 {
		return nil, errors.New("no authenticated user")
	}

	var user models.User
	if err := db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// statusForError maps the chat package's error taxonomy onto HTTP codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, chat.ErrRoomNotFound), errors.Is(err, chat.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, chat.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, chat.ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
}
