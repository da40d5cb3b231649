package server

import (
	"github.com/pro-power/polishr-sub001/internal/analytics"
	"github.com/pro-power/polishr-sub001/internal/featureflags"
	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetPublicProfile handles GET /api/public/:username. A successful load
// also records a deduplicated profile view without delaying the response.
func (s *Server) GetPublicProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	profile, err := s.profileService.GetPublicProfile(c.Context(), username)
	if err != nil {
		return respondError(c, err)
	}

	ownerID, err := s.profileService.ResolveProfileOwner(c.Context(), username)
	if err == nil {
		s.analyticsService.RecordProfileView(ownerID, analytics.MetaFromRequest(c))
	}

	return c.JSON(fiber.Map{"data": profile})
}

// RecordProjectClick handles POST /api/public/projects/:id/click
func (s *Server) RecordProjectClick(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ClickType string `json:"click_type"`
	}
	if err := c.BodyParser(&req); err != nil || req.ClickType == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Click type is required"))
	}

	if err := s.analyticsService.RecordProjectClick(
		c.Context(), projectID, req.ClickType, analytics.MetaFromRequest(c)); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Click recorded",
	})
}

// CaptureEmail handles POST /api/public/:username/subscribe. The feature
// is flag-gated per profile owner.
func (s *Server) CaptureEmail(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	var req struct {
		Email  string `json:"email"`
		Source string `json:"source"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	ownerID, err := s.profileService.ResolveProfileOwner(c.Context(), username)
	if err != nil {
		return respondError(c, err)
	}

	if !s.featureFlags.Enabled(featureflags.FlagEmailCapture, ownerID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Email capture is not enabled for this profile"))
	}

	capture := &models.EmailCapture{
		UserID: ownerID,
		Email:  req.Email,
		Source: req.Source,
	}
	if err := s.captureRepo.Create(c.Context(), capture); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Subscribed",
	})
}
