package service

import (
	"context"
	"time"

	"github.com/pro-power/polishr-sub001/internal/analytics"
	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/repository"
)

// AnalyticsSummary is the owner-facing dashboard payload.
type AnalyticsSummary struct {
	TotalViews       int64                          `json:"total_views"`
	ViewsLast7Days   int64                          `json:"views_last_7_days"`
	ViewsLast30Days  int64                          `json:"views_last_30_days"`
	DeviceBreakdown  map[string]int64               `json:"device_breakdown"`
	BrowserBreakdown map[string]int64               `json:"browser_breakdown"`
	TotalClicks      int64                          `json:"total_clicks"`
	ClicksByProject  []repository.ProjectClickTotal `json:"clicks_by_project"`
	ClicksByType     map[string]int64               `json:"clicks_by_type"`
}

type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	projectRepo   repository.ProjectRepository
	recorder      *analytics.Recorder
	now           func() time.Time
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, projectRepo repository.ProjectRepository) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		projectRepo:   projectRepo,
		recorder:      analytics.NewRecorder(analyticsRepo),
		now:           time.Now,
	}
}

// RecordProfileView fires detached view recording for a profile page hit.
func (s *AnalyticsService) RecordProfileView(userID uint, meta analytics.RequestMeta) {
	s.recorder.RecordProfileViewAsync(userID, meta)
}

// RecordProjectClick records a click against a publicly visible project.
// Clicks on draft, archived, or private projects are rejected so owners
// cannot be click-tracked through unlisted entries.
func (s *AnalyticsService) RecordProjectClick(ctx context.Context, projectID uint, clickType string, meta analytics.RequestMeta) error {
	if !models.ValidClickType(clickType) {
		return models.NewValidationError("Invalid click type")
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.Visible() {
		return models.NewForbiddenError("Project is not public")
	}

	return s.recorder.RecordProjectClick(ctx, projectID, clickType, meta)
}

// GetSummary assembles the owner's analytics dashboard.
func (s *AnalyticsService) GetSummary(ctx context.Context, userID uint) (*AnalyticsSummary, error) {
	now := s.now()

	total, err := s.analyticsRepo.CountViews(ctx, userID)
	if err != nil {
		return nil, err
	}
	last7, err := s.analyticsRepo.CountViewsSince(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	last30, err := s.analyticsRepo.CountViewsSince(ctx, userID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	devices, err := s.analyticsRepo.DeviceBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	browsers, err := s.analyticsRepo.BrowserBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	byProject, err := s.analyticsRepo.ClickTotalsByProject(ctx, userID)
	if err != nil {
		return nil, err
	}
	byType, err := s.analyticsRepo.ClickTypeBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}

	var totalClicks int64
	for _, p := range byProject {
		totalClicks += p.Clicks
	}

	return &AnalyticsSummary{
		TotalViews:       total,
		ViewsLast7Days:   last7,
		ViewsLast30Days:  last30,
		DeviceBreakdown:  devices,
		BrowserBreakdown: browsers,
		TotalClicks:      totalClicks,
		ClicksByProject:  byProject,
		ClicksByType:     byType,
	}, nil
}
