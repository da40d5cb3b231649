package service

import (
	"context"
	"testing"
	"time"

	"github.com/pro-power/polishr-sub001/internal/analytics"
	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analyticsRepoStub struct {
	views  []*models.ProfileView
	clicks []*models.ProjectClick

	incremented []uint

	totalViews int64
	last7      int64
	last30     int64
	devices    map[string]int64
	browsers   map[string]int64
	byProject  []repository.ProjectClickTotal
	byType     map[string]int64
}

func (s *analyticsRepoStub) HasViewSince(context.Context, uint, string, time.Time) (bool, error) {
	return false, nil
}
func (s *analyticsRepoStub) CreateView(_ context.Context, view *models.ProfileView) error {
	s.views = append(s.views, view)
	return nil
}
func (s *analyticsRepoStub) CreateClick(_ context.Context, click *models.ProjectClick) error {
	s.clicks = append(s.clicks, click)
	return nil
}
func (s *analyticsRepoStub) IncrementClickCount(_ context.Context, projectID uint) error {
	s.incremented = append(s.incremented, projectID)
	return nil
}
func (s *analyticsRepoStub) CountViews(context.Context, uint) (int64, error) {
	return s.totalViews, nil
}
func (s *analyticsRepoStub) CountViewsSince(_ context.Context, _ uint, since time.Time) (int64, error) {
	if time.Since(since) < 8*24*time.Hour {
		return s.last7, nil
	}
	return s.last30, nil
}
func (s *analyticsRepoStub) DeviceBreakdown(context.Context, uint) (map[string]int64, error) {
	return s.devices, nil
}
func (s *analyticsRepoStub) BrowserBreakdown(context.Context, uint) (map[string]int64, error) {
	return s.browsers, nil
}
func (s *analyticsRepoStub) ClickTotalsByProject(context.Context, uint) ([]repository.ProjectClickTotal, error) {
	return s.byProject, nil
}
func (s *analyticsRepoStub) ClickTypeBreakdown(context.Context, uint) (map[string]int64, error) {
	return s.byType, nil
}

func TestAnalyticsService_RecordProjectClick(t *testing.T) {
	ctx := context.Background()
	meta := analytics.RequestMeta{IP: "1.2.3.4", UserAgent: "ua"}

	t.Run("Visible project", func(t *testing.T) {
		store := &analyticsRepoStub{}
		projects := noopProjectRepo()
		projects.getByIDFn = func(context.Context, uint) (*models.Project, error) {
			return &models.Project{ID: 3, Status: models.ProjectStatusLive, Public: true}, nil
		}
		svc := NewAnalyticsService(store, projects)

		require.NoError(t, svc.RecordProjectClick(ctx, 3, models.ClickTypeDemo, meta))
		require.Len(t, store.clicks, 1)
		assert.Equal(t, models.ClickTypeDemo, store.clicks[0].ClickType)
		assert.Equal(t, []uint{3}, store.incremented)
	})

	t.Run("Invalid click type short-circuits", func(t *testing.T) {
		store := &analyticsRepoStub{}
		projects := noopProjectRepo()
		looked := false
		projects.getByIDFn = func(context.Context, uint) (*models.Project, error) {
			looked = true
			return &models.Project{ID: 3, Status: models.ProjectStatusLive, Public: true}, nil
		}
		svc := NewAnalyticsService(store, projects)

		err := svc.RecordProjectClick(ctx, 3, "hover", meta)
		validationCode(t, err)
		assert.False(t, looked)
		assert.Empty(t, store.clicks)
	})

	t.Run("Hidden projects reject clicks", func(t *testing.T) {
		tests := []struct {
			name    string
			project models.Project
		}{
			{"draft", models.Project{ID: 3, Status: models.ProjectStatusDraft, Public: true}},
			{"archived", models.Project{ID: 3, Status: models.ProjectStatusArchived, Public: true}},
			{"private", models.Project{ID: 3, Status: models.ProjectStatusLive, Public: false}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := &analyticsRepoStub{}
				projects := noopProjectRepo()
				projects.getByIDFn = func(context.Context, uint) (*models.Project, error) {
					p := tt.project
					return &p, nil
				}
				svc := NewAnalyticsService(store, projects)

				err := svc.RecordProjectClick(ctx, 3, models.ClickTypeDemo, meta)
				require.Error(t, err)
				appErr, ok := err.(*models.AppError)
				require.True(t, ok)
				assert.Equal(t, "FORBIDDEN", appErr.Code)
				assert.Empty(t, store.clicks)
			})
		}
	})

	t.Run("Unknown project", func(t *testing.T) {
		store := &analyticsRepoStub{}
		projects := noopProjectRepo()
		projects.getByIDFn = func(context.Context, uint) (*models.Project, error) {
			return nil, models.NewNotFoundError("Project", 99)
		}
		svc := NewAnalyticsService(store, projects)

		err := svc.RecordProjectClick(ctx, 99, models.ClickTypeDemo, meta)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestAnalyticsService_GetSummary(t *testing.T) {
	store := &analyticsRepoStub{
		totalViews: 120,
		last7:      15,
		last30:     60,
		devices:    map[string]int64{"desktop": 80, "mobile": 40},
		browsers:   map[string]int64{"chrome": 100, "safari": 20},
		byProject: []repository.ProjectClickTotal{
			{ProjectID: 2, Title: "Busy", Clicks: 30},
			{ProjectID: 1, Title: "Quiet", Clicks: 5},
		},
		byType: map[string]int64{models.ClickTypeDemo: 25, models.ClickTypeRepo: 10},
	}
	svc := NewAnalyticsService(store, noopProjectRepo())

	summary, err := svc.GetSummary(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(120), summary.TotalViews)
	assert.Equal(t, int64(15), summary.ViewsLast7Days)
	assert.Equal(t, int64(60), summary.ViewsLast30Days)
	assert.Equal(t, int64(35), summary.TotalClicks, "summed from per-project totals")
	require.Len(t, summary.ClicksByProject, 2)
	assert.Equal(t, uint(2), summary.ClicksByProject[0].ProjectID)
	assert.Equal(t, map[string]int64{"desktop": 80, "mobile": 40}, summary.DeviceBreakdown)
}
