package server

import (
	"devhub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/feature-flags
// @Summary Get feature flags evaluated for the current user
// @Tags system
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{flags=map[string]bool}
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Snapshot(middleware.UserID(c)),
	})
}
