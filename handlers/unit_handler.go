package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/models"
)

type UnitHandler struct {
	DB *gorm.DB
}

func NewUnitHandler(db *gorm.DB) *UnitHandler {
	return &UnitHandler{DB: db}
}

// CreateUnitRequest
type CreateUnitRequest struct {
	VIN   string `json:"vin"`
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  string `json:"year"`
}

// CreateUnit - POST /api/units
func (h *UnitHandler) CreateUnit(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if len(req.VIN) != 17 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "VIN must be 17 characters"})
	}

	unit := models.Unit{
		UserID: user.ID,
		VIN:    req.VIN,
		Brand:  req.Brand,
		Model:  req.Model,
		Year:   req.Year,
	}
	if err := h.DB.Create(&unit).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Could not register unit"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Unit registered", "data": unit})
}

// ListUnits - GET /api/units
// Owners see their fleet. Staff see everything, optionally narrowed
// to one user, so they can pick the unit a support room is about.
func (h *UnitHandler) ListUnits(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	query := h.DB.Order("created_at desc")
	if user.IsStaff {
		if ownerID := c.QueryInt("user_id"); ownerID > 0 {
			query = query.Where("user_id = ?", ownerID)
		}
	} else {
		query = query.Where("user_id = ?", user.ID)
	}

	if vin := c.Query("vin"); vin != "" {
		query = query.Where("vin LIKE ?", "%"+vin+"%")
	}

	var units []models.Unit
	if err := query.Find(&units).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch units"})
	}
	return c.JSON(fiber.Map{"data": units})
}

// GetUnit - GET /api/units/:id
func (h *UnitHandler) GetUnit(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, _ := strconv.Atoi(c.Params("id"))
	var unit models.Unit
	if err := h.DB.First(&unit, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unit not found"})
	}
	if unit.UserID != user.ID && !user.IsStaff {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unit not found"})
	}
	return c.JSON(fiber.Map{"data": unit})
}
