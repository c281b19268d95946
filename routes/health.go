package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"storefront/db"
)

type HealthHandler struct {
	db *gorm.DB
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := db.Ping(c.UserContext(), h.db); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
