package server

import (
	"github.com/pro-power/polishr-sub001/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetProjectImages handles GET /api/projects/:id/images
func (s *Server) GetProjectImages(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	images, err := s.projectService.ListImages(c.Context(), currentUserID(c), projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": images})
}

// AddProjectImage handles POST /api/projects/:id/images
func (s *Server) AddProjectImage(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image URL is required"))
	}

	image, err := s.projectService.AddImage(c.Context(), currentUserID(c), projectID, req.URL)
	if err != nil {
		return respondError(c, err)
	}

	s.invalidateOwnerProfile(c, currentUserID(c))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": image})
}

// DeleteProjectImage handles DELETE /api/projects/:id/images/:imageId
func (s *Server) DeleteProjectImage(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	imageID, err := s.parseID(c, "imageId")
	if err != nil {
		return nil
	}

	if err := s.projectService.DeleteImage(c.Context(), currentUserID(c), projectID, imageID); err != nil {
		return respondError(c, err)
	}

	s.invalidateOwnerProfile(c, currentUserID(c))
	return c.JSON(fiber.Map{"message": "Image deleted"})
}

// ReorderProjectImages handles PUT /api/projects/:id/images/reorder
func (s *Server) ReorderProjectImages(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Order []uint `json:"order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	images, err := s.projectService.ReorderImages(c.Context(), currentUserID(c), projectID, req.Order)
	if err != nil {
		return respondError(c, err)
	}

	s.invalidateOwnerProfile(c, currentUserID(c))
	return c.JSON(fiber.Map{"data": images})
}
