package server

import (
	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": user})
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
		AvatarURL   *string `json:"avatar_url"`
		GithubURL   *string `json:"github_url"`
		TwitterURL  *string `json:"twitter_url"`
		LinkedinURL *string `json:"linkedin_url"`
		WebsiteURL  *string `json:"website_url"`
		Theme       *string `json:"theme"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:      currentUserID(c),
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		GithubURL:   req.GithubURL,
		TwitterURL:  req.TwitterURL,
		LinkedinURL: req.LinkedinURL,
		WebsiteURL:  req.WebsiteURL,
		Theme:       req.Theme,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": user})
}

// CompleteOnboarding handles POST /api/users/me/onboarding/complete
func (s *Server) CompleteOnboarding(c *fiber.Ctx) error {
	user, err := s.userService.CompleteOnboarding(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": user})
}

// UpdateMyPlan handles PUT /api/users/me/plan
func (s *Server) UpdateMyPlan(c *fiber.Ctx) error {
	var req struct {
		Plan string `json:"plan"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SetPlan(c.Context(), currentUserID(c), req.Plan)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": user})
}

// GetMyEmailCaptures handles GET /api/users/me/captures
func (s *Server) GetMyEmailCaptures(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 50)

	captures, err := s.captureRepo.ListByUser(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	total, err := s.captureRepo.CountByUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data":  captures,
		"total": total,
	})
}
