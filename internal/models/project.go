package models

import (
	"time"

	"gorm.io/gorm"
)

// Project status enumeration.
const (
	ProjectStatusDraft      = "draft"
	ProjectStatusLive       = "live"
	ProjectStatusComingSoon = "coming-soon"
	ProjectStatusArchived   = "archived"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusLive, ProjectStatusComingSoon, ProjectStatusArchived:
		return true
	}
	return false
}

// Project is a showcased portfolio entry owned by exactly one user.
// Position is a dense zero-based index defining manual display order
// within the owner's set. ClickCount is a cached projection of the
// project_clicks event log; the log is the source of truth.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	TechStack   []string       `gorm:"serializer:json" json:"tech_stack"`
	Category    string         `json:"category"`
	CTAType     string         `json:"cta_type"`
	CTAURL      *string        `json:"cta_url"`
	CTAText     *string        `json:"cta_text"`
	Status      string         `gorm:"default:draft;index" json:"status"`
	Public      bool           `gorm:"default:true" json:"public"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	ClickCount  int64          `gorm:"not null;default:0" json:"click_count"`
	ImageURL    *string        `json:"image_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Images      []ProjectImage `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// Visible reports whether the project may appear on the public profile
// and accept click tracking.
func (p *Project) Visible() bool {
	return p.Public && (p.Status == ProjectStatusLive || p.Status == ProjectStatusComingSoon)
}

// ProjectImage is an ordered image attached to a project. The image at
// position 0 is the primary image surfaced on cards and denormalized
// onto Project.ImageURL.
type ProjectImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index;not null" json:"project_id"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	URL       string    `gorm:"not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
