package service

import (
	"context"

	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/repository"
	"github.com/pro-power/polishr-sub001/internal/validation"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 2000
	maxTechStackItems = 20
	maxImagesPerProj  = 10
)

type ProjectService struct {
	projectRepo repository.ProjectRepository
	imageRepo   repository.ImageRepository
}

type CreateProjectInput struct {
	UserID      uint
	Title       string
	Description string
	TechStack   []string
	Category    string
	CTAType     string
	CTAURL      string
	CTAText     string
	Status      string
	Public      *bool
}

// UpdateProjectInput carries project edits. Pointer fields distinguish
// "not sent" from "sent empty".
type UpdateProjectInput struct {
	UserID      uint
	ProjectID   uint
	Title       *string
	Description *string
	TechStack   []string
	Category    *string
	CTAType     *string
	CTAURL      *string
	CTAText     *string
	Status      *string
	Public      *bool
}

func NewProjectService(projectRepo repository.ProjectRepository, imageRepo repository.ImageRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, imageRepo: imageRepo}
}

func (s *ProjectService) ListProjects(ctx context.Context, ownerID uint) ([]models.Project, error) {
	return s.projectRepo.ListByOwner(ctx, ownerID)
}

func (s *ProjectService) GetProject(ctx context.Context, ownerID, projectID uint) (*models.Project, error) {
	return s.projectRepo.GetOwned(ctx, ownerID, projectID)
}

func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 100 characters)")
	}
	if len(in.Description) > maxDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 2000 characters)")
	}
	if len(in.TechStack) > maxTechStackItems {
		return nil, models.NewValidationError("Too many tech stack entries (max 20)")
	}

	status := in.Status
	if status == "" {
		status = models.ProjectStatusDraft
	}
	if !models.ValidProjectStatus(status) {
		return nil, models.NewValidationError("Invalid project status")
	}

	ctaURL, err := validation.NormalizeOptionalURL(in.CTAURL)
	if err != nil {
		return nil, models.NewValidationError("CTA URL: " + err.Error())
	}

	public := true
	if in.Public != nil {
		public = *in.Public
	}

	project := &models.Project{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		TechStack:   in.TechStack,
		Category:    in.Category,
		CTAType:     in.CTAType,
		CTAURL:      ctaURL,
		CTAText:     validation.NormalizeOptional(in.CTAText),
		Status:      status,
		Public:      public,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.GetOwned(ctx, in.UserID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if len(*in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 100 characters)")
		}
		project.Title = *in.Title
	}
	if in.Description != nil {
		if len(*in.Description) > maxDescriptionLen {
			return nil, models.NewValidationError("Description too long (max 2000 characters)")
		}
		project.Description = *in.Description
	}
	if in.TechStack != nil {
		if len(in.TechStack) > maxTechStackItems {
			return nil, models.NewValidationError("Too many tech stack entries (max 20)")
		}
		project.TechStack = in.TechStack
	}
	if in.Category != nil {
		project.Category = *in.Category
	}
	if in.CTAType != nil {
		project.CTAType = *in.CTAType
	}
	if in.CTAURL != nil {
		normalized, err := validation.NormalizeOptionalURL(*in.CTAURL)
		if err != nil {
			return nil, models.NewValidationError("CTA URL: " + err.Error())
		}
		project.CTAURL = normalized
	}
	if in.CTAText != nil {
		project.CTAText = validation.NormalizeOptional(*in.CTAText)
	}
	if in.Status != nil {
		if !models.ValidProjectStatus(*in.Status) {
			return nil, models.NewValidationError("Invalid project status")
		}
		project.Status = *in.Status
	}
	if in.Public != nil {
		project.Public = *in.Public
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, ownerID, projectID uint) error {
	return s.projectRepo.Delete(ctx, ownerID, projectID)
}

// ReorderProjects applies a complete new ordering of the owner's
// projects. orderedIDs must cover every project exactly once.
func (s *ProjectService) ReorderProjects(ctx context.Context, ownerID uint, orderedIDs []uint) ([]models.Project, error) {
	if len(orderedIDs) == 0 {
		return nil, models.NewValidationError("Order must not be empty")
	}
	if err := s.projectRepo.Reorder(ctx, ownerID, orderedIDs); err != nil {
		return nil, err
	}
	return s.projectRepo.ListByOwner(ctx, ownerID)
}

func (s *ProjectService) ListImages(ctx context.Context, ownerID, projectID uint) ([]models.ProjectImage, error) {
	if _, err := s.projectRepo.GetOwned(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	return s.imageRepo.ListByProject(ctx, projectID)
}

func (s *ProjectService) AddImage(ctx context.Context, ownerID, projectID uint, url string) (*models.ProjectImage, error) {
	if _, err := s.projectRepo.GetOwned(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	if err := validation.ValidateURL(url); err != nil {
		return nil, models.NewValidationError("Image URL: " + err.Error())
	}

	existing, err := s.imageRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxImagesPerProj {
		return nil, models.NewValidationError("Too many images (max 10 per project)")
	}

	image := &models.ProjectImage{ProjectID: projectID, URL: url}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

func (s *ProjectService) DeleteImage(ctx context.Context, ownerID, projectID, imageID uint) error {
	if _, err := s.projectRepo.GetOwned(ctx, ownerID, projectID); err != nil {
		return err
	}
	return s.imageRepo.Delete(ctx, projectID, imageID)
}

// ReorderImages applies a complete new ordering of a project's images.
func (s *ProjectService) ReorderImages(ctx context.Context, ownerID, projectID uint, orderedIDs []uint) ([]models.ProjectImage, error) {
	if _, err := s.projectRepo.GetOwned(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	if len(orderedIDs) == 0 {
		return nil, models.NewValidationError("Order must not be empty")
	}
	if err := s.imageRepo.Reorder(ctx, projectID, orderedIDs); err != nil {
		return nil, err
	}
	return s.imageRepo.ListByProject(ctx, projectID)
}

// RecomputeClickCount reconciles an owned project's cached counter
// against its click event log.
func (s *ProjectService) RecomputeClickCount(ctx context.Context, ownerID, projectID uint) (int64, error) {
	if _, err := s.projectRepo.GetOwned(ctx, ownerID, projectID); err != nil {
		return 0, err
	}
	return s.projectRepo.RecomputeClickCount(ctx, projectID)
}
