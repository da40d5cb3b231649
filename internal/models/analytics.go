package models

import "time"

// Click type enumeration for project click events.
const (
	ClickTypeDemo  = "demo"
	ClickTypeRepo  = "repo"
	ClickTypeCTA   = "cta"
	ClickTypeImage = "image"
	ClickTypeTitle = "title"
)

// ValidClickType reports whether t is a known click type.
func ValidClickType(t string) bool {
	switch t {
	case ClickTypeDemo, ClickTypeRepo, ClickTypeCTA, ClickTypeImage, ClickTypeTitle:
		return true
	}
	return false
}

// ProfileView is an immutable visit event against a user's public
// profile. At most one row per (user_id, visitor_id) is recorded within
// any trailing 24-hour window; the composite index backs that check.
type ProfileView struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index:idx_profile_views_dedup,priority:1;not null" json:"user_id"`
	VisitorID   string    `gorm:"index:idx_profile_views_dedup,priority:2;not null" json:"visitor_id"`
	IPAddress   string    `json:"-"`
	UserAgent   string    `json:"-"`
	Referer     string    `json:"referer"`
	DeviceType  string    `json:"device_type"`
	BrowserType string    `json:"browser_type"`
	CreatedAt   time.Time `gorm:"index:idx_profile_views_dedup,priority:3" json:"created_at"`
}

// ProjectClick is an immutable click event against a showcased project.
// Every click is recorded; there is no dedup invariant.
type ProjectClick struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"index;not null" json:"project_id"`
	VisitorID   string    `gorm:"index;not null" json:"visitor_id"`
	ClickType   string    `gorm:"not null" json:"click_type"`
	IPAddress   string    `json:"-"`
	UserAgent   string    `json:"-"`
	Referer     string    `json:"referer"`
	DeviceType  string    `json:"device_type"`
	BrowserType string    `json:"browser_type"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// EmailCapture is an immutable record of an email address submitted on a
// user's public page (waitlist/profile capture) with a source tag.
type EmailCapture struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Email     string    `gorm:"not null" json:"email"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
