package server

import (
	"github.com/pro-power/polishr-sub001/internal/cache"
	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/service"

	"github.com/gofiber/fiber/v2"
)

type projectRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	TechStack   []string `json:"tech_stack"`
	Category    *string  `json:"category"`
	CTAType     *string  `json:"cta_type"`
	CTAURL      *string  `json:"cta_url"`
	CTAText     *string  `json:"cta_text"`
	Status      *string  `json:"status"`
	Public      *bool    `json:"public"`
}

// GetMyProjects handles GET /api/projects
func (s *Server) GetMyProjects(c *fiber.Ctx) error {
	projects, err := s.projectService.ListProjects(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": projects})
}

// GetProject handles GET /api/projects/:id
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	project, err := s.projectService.GetProject(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": project})
}

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreateProjectInput{
		UserID:    currentUserID(c),
		TechStack: req.TechStack,
		Public:    req.Public,
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.CTAType != nil {
		in.CTAType = *req.CTAType
	}
	if req.CTAURL != nil {
		in.CTAURL = *req.CTAURL
	}
	if req.CTAText != nil {
		in.CTAText = *req.CTAText
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	project, err := s.projectService.CreateProject(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}

	s.invalidateOwnerProfile(c, currentUserID(c))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": project})
}

// UpdateProject handles PUT /api/projects/:id
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.UpdateProject(c.Context(), service.UpdateProjectInput{
		UserID:      currentUserID(c),
		ProjectID:   id,
		Title:       req.Title,
		Description: req.Description,
		TechStack:   req.TechStack,
		Category:    req.Category,
		CTAType:     req.CTAType,
		CTAURL:      req.CTAURL,
		CTAText:     req.CTAText,
		Status:      req.Status,
		Public:      req.Public,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.invalidateOwnerProfile(c, currentUserID(c))
	return c.JSON(fiber.Map{"data": project})
}

// DeleteProject handles DELETE /api/projects/:id
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.projectService.DeleteProject(c.Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}

	s.invalidateOwnerProfile(c, currentUserID(c))
	return c.JSON(fiber.Map{"message": "Project deleted"})
}

// ReorderProjects handles PUT /api/projects/reorder
func (s *Server) ReorderProjects(c *fiber.Ctx) error {
	var req struct {
		Order []uint `json:"order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	projects, err := s.projectService.ReorderProjects(c.Context(), currentUserID(c), req.Order)
	if err != nil {
		return respondError(c, err)
	}

	s.invalidateOwnerProfile(c, currentUserID(c))
	return c.JSON(fiber.Map{"data": projects})
}

// RecomputeProjectClicks handles POST /api/projects/:id/clicks/recompute
func (s *Server) RecomputeProjectClicks(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.projectService.RecomputeClickCount(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"project_id":  id,
			"click_count": count,
		},
	})
}

// invalidateOwnerProfile drops the cached public profile after a write
// that changes what the public page shows.
func (s *Server) invalidateOwnerProfile(c *fiber.Ctx, userID uint) {
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil || user == nil {
		return
	}
	cache.InvalidateProfile(c.Context(), user.Username)
}
