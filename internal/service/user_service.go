// Package service implements the application's business logic on top of
// the repository layer.
package service

import (
	"context"
	"time"

	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/repository"
	"github.com/pro-power/polishr-sub001/internal/validation"
)

const (
	maxDisplayNameLen = 50
	maxBioLen         = 500
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries profile edits. Pointer fields distinguish
// "not sent" (nil) from "sent empty" (clear the column).
type UpdateProfileInput struct {
	UserID      uint
	DisplayName *string
	Bio         *string
	AvatarURL   *string
	GithubURL   *string
	TwitterURL  *string
	LinkedinURL *string
	WebsiteURL  *string
	Theme       *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		if len(*in.DisplayName) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 50 characters)")
		}
		user.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Theme != nil {
		if *in.Theme != "dark" && *in.Theme != "light" {
			return nil, models.NewValidationError("Theme must be dark or light")
		}
		user.Theme = *in.Theme
	}

	urlFields := []struct {
		raw  *string
		dest **string
		name string
	}{
		{in.AvatarURL, &user.AvatarURL, "Avatar URL"},
		{in.GithubURL, &user.GithubURL, "GitHub URL"},
		{in.TwitterURL, &user.TwitterURL, "Twitter URL"},
		{in.LinkedinURL, &user.LinkedinURL, "LinkedIn URL"},
		{in.WebsiteURL, &user.WebsiteURL, "Website URL"},
	}
	for _, f := range urlFields {
		if f.raw == nil {
			continue
		}
		normalized, err := validation.NormalizeOptionalURL(*f.raw)
		if err != nil {
			return nil, models.NewValidationError(f.name + ": " + err.Error())
		}
		*f.dest = normalized
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// CompleteOnboarding marks the guided setup flow finished. Idempotent.
func (s *UserService) CompleteOnboarding(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.OnboardingCompleted {
		user.OnboardingCompleted = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// SetPlan switches the user's plan tier.
func (s *UserService) SetPlan(ctx context.Context, userID uint, plan string) (*models.User, error) {
	if plan != models.PlanFree && plan != models.PlanPro {
		return nil, models.NewValidationError("Plan must be free or pro")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Plan = plan
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) RecordLogin(ctx context.Context, userID uint, at time.Time) error {
	return s.userRepo.UpdateLastLogin(ctx, userID, at)
}
