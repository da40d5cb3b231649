// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan tiers.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User represents a registered account and its public profile fields.
// Email and password never leave the API; the public shape is assembled
// separately by the profile service.
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Username            string         `gorm:"uniqueIndex;not null" json:"username"`
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`
	Password            string         `gorm:"not null" json:"-"`
	DisplayName         string         `json:"display_name"`
	Bio                 string         `json:"bio"`
	AvatarURL           *string        `json:"avatar_url"`
	GithubURL           *string        `json:"github_url"`
	TwitterURL          *string        `json:"twitter_url"`
	LinkedinURL         *string        `json:"linkedin_url"`
	WebsiteURL          *string        `json:"website_url"`
	Theme               string         `gorm:"default:dark" json:"theme"`
	Plan                string         `gorm:"default:free" json:"plan"`
	EmailVerifiedAt     *time.Time     `json:"email_verified_at"`
	OnboardingCompleted bool           `gorm:"default:false" json:"onboarding_completed"`
	LastLoginAt         *time.Time     `json:"last_login_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
	Projects            []Project      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
}

// IsVerified reports whether the user has completed email verification.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
