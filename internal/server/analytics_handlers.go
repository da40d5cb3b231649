package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetMyAnalytics handles GET /api/users/me/analytics
func (s *Server) GetMyAnalytics(c *fiber.Ctx) error {
	summary, err := s.analyticsService.GetSummary(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": summary})
}
