package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/models"
)

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// SearchUsers lets staff look up a customer by email or name before
// opening a support room with them.
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if !user.IsStaff {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Staff only"})
	}

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter 'q' is required",
		})
	}

	var users []models.User
	pattern := "%" + query + "%"
	err = h.DB.
		Where("is_active = ? AND is_staff = ?", true, false).
		Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", pattern, pattern, pattern).
		Limit(10).
		Find(&users).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not search users",
		})
	}

	results := make([]models.UserInfo, 0, len(users))
	for i := range users {
		results = append(results, users[i].PublicInfo())
	}
	return c.JSON(fiber.Map{"data": results})
}
