package service

import (
	"context"

	"github.com/pro-power/polishr-sub001/internal/cache"
	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/repository"
)

// PublicProfile is the assembled public view of a user's page: profile
// fields plus visible projects in display order. Email, plan, and
// verification state stay private.
type PublicProfile struct {
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name"`
	Bio         string          `json:"bio"`
	AvatarURL   *string         `json:"avatar_url"`
	GithubURL   *string         `json:"github_url"`
	TwitterURL  *string         `json:"twitter_url"`
	LinkedinURL *string         `json:"linkedin_url"`
	WebsiteURL  *string         `json:"website_url"`
	Theme       string          `json:"theme"`
	Projects    []PublicProject `json:"projects"`
}

// PublicProject is the public shape of a showcased project.
type PublicProject struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
	Category    string   `json:"category"`
	CTAType     string   `json:"cta_type"`
	CTAURL      *string  `json:"cta_url"`
	CTAText     *string  `json:"cta_text"`
	Status      string   `json:"status"`
	Position    int      `json:"position"`
	ClickCount  int64    `json:"click_count"`
	ImageURL    *string  `json:"image_url"`
	Images      []string `json:"images"`
}

type ProfileService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
}

func NewProfileService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo, projectRepo: projectRepo}
}

// GetPublicProfile assembles the public page for a username. Unknown
// usernames return NotFound. Assembled profiles are cached briefly;
// profile and project writes invalidate the entry.
func (s *ProfileService) GetPublicProfile(ctx context.Context, username string) (*PublicProfile, error) {
	var profile PublicProfile
	key := cache.ProfileKey(username)

	err := cache.Aside(ctx, key, &profile, cache.ProfileTTL, func() error {
		user, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if user == nil {
			return models.NewNotFoundError("Profile", username)
		}

		projects, err := s.projectRepo.ListVisibleByOwner(ctx, user.ID)
		if err != nil {
			return err
		}

		profile = assembleProfile(user, projects)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ResolveProfileOwner maps a username to its user ID for analytics
// recording, without exposing the full record.
func (s *ProfileService) ResolveProfileOwner(ctx context.Context, username string) (uint, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, models.NewNotFoundError("Profile", username)
	}
	return user.ID, nil
}

func assembleProfile(user *models.User, projects []models.Project) PublicProfile {
	out := PublicProfile{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		AvatarURL:   user.AvatarURL,
		GithubURL:   user.GithubURL,
		TwitterURL:  user.TwitterURL,
		LinkedinURL: user.LinkedinURL,
		WebsiteURL:  user.WebsiteURL,
		Theme:       user.Theme,
		Projects:    make([]PublicProject, 0, len(projects)),
	}

	for _, p := range projects {
		urls := make([]string, 0, len(p.Images))
		for _, img := range p.Images {
			urls = append(urls, img.URL)
		}
		out.Projects = append(out.Projects, PublicProject{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			TechStack:   p.TechStack,
			Category:    p.Category,
			CTAType:     p.CTAType,
			CTAURL:      p.CTAURL,
			CTAText:     p.CTAText,
			Status:      p.Status,
			Position:    p.Position,
			ClickCount:  p.ClickCount,
			ImageURL:    p.ImageURL,
			Images:      urls,
		})
	}

	return out
}
