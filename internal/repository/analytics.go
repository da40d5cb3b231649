package repository

import (
	"context"
	"time"

	"github.com/pro-power/polishr-sub001/internal/models"

	"gorm.io/gorm"
)

// ProjectClickTotal pairs a project with its click totals for the
// owner's analytics summary.
type ProjectClickTotal struct {
	ProjectID uint   `json:"project_id"`
	Title     string `json:"title"`
	Clicks    int64  `json:"clicks"`
}

// AnalyticsRepository persists and aggregates analytics events. The
// write half satisfies analytics.EventStore.
type AnalyticsRepository interface {
	HasViewSince(ctx context.Context, userID uint, visitorID string, since time.Time) (bool, error)
	CreateView(ctx context.Context, view *models.ProfileView) error
	CreateClick(ctx context.Context, click *models.ProjectClick) error
	IncrementClickCount(ctx context.Context, projectID uint) error

	CountViews(ctx context.Context, userID uint) (int64, error)
	CountViewsSince(ctx context.Context, userID uint, since time.Time) (int64, error)
	DeviceBreakdown(ctx context.Context, userID uint) (map[string]int64, error)
	BrowserBreakdown(ctx context.Context, userID uint) (map[string]int64, error)
	ClickTotalsByProject(ctx context.Context, userID uint) ([]ProjectClickTotal, error)
	ClickTypeBreakdown(ctx context.Context, userID uint) (map[string]int64, error)
}

type analyticsRepository struct {
	db       *gorm.DB
	projects ProjectRepository
}

// NewAnalyticsRepository returns a new AnalyticsRepository implementation.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db, projects: NewProjectRepository(db)}
}

func (r *analyticsRepository) HasViewSince(ctx context.Context, userID uint, visitorID string, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProfileView{}).
		Where("user_id = ? AND visitor_id = ? AND created_at >= ?", userID, visitorID, since).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *analyticsRepository) CreateView(ctx context.Context, view *models.ProfileView) error {
	if err := r.db.WithContext(ctx).Create(view).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *analyticsRepository) CreateClick(ctx context.Context, click *models.ProjectClick) error {
	if err := r.db.WithContext(ctx).Create(click).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *analyticsRepository) IncrementClickCount(ctx context.Context, projectID uint) error {
	return r.projects.IncrementClickCount(ctx, projectID)
}

func (r *analyticsRepository) CountViews(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.ProfileView{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *analyticsRepository) CountViewsSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.ProfileView{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

type bucketRow struct {
	Bucket string
	Cnt    int64
}

func (r *analyticsRepository) DeviceBreakdown(ctx context.Context, userID uint) (map[string]int64, error) {
	return r.viewBreakdown(ctx, userID, "device_type")
}

func (r *analyticsRepository) BrowserBreakdown(ctx context.Context, userID uint) (map[string]int64, error) {
	return r.viewBreakdown(ctx, userID, "browser_type")
}

func (r *analyticsRepository) viewBreakdown(ctx context.Context, userID uint, column string) (map[string]int64, error) {
	var rows []bucketRow
	if err := readDB(r.db).WithContext(ctx).Model(&models.ProfileView{}).
		Select(column+" AS bucket, COUNT(*) AS cnt").
		Where("user_id = ?", userID).
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Bucket] = row.Cnt
	}
	return out, nil
}

func (r *analyticsRepository) ClickTotalsByProject(ctx context.Context, userID uint) ([]ProjectClickTotal, error) {
	var totals []ProjectClickTotal
	if err := readDB(r.db).WithContext(ctx).Model(&models.ProjectClick{}).
		Select("project_clicks.project_id AS project_id, projects.title AS title, COUNT(*) AS clicks").
		Joins("JOIN projects ON projects.id = project_clicks.project_id").
		Where("projects.user_id = ?", userID).
		Group("project_clicks.project_id, projects.title").
		Order("clicks DESC").
		Scan(&totals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return totals, nil
}

func (r *analyticsRepository) ClickTypeBreakdown(ctx context.Context, userID uint) (map[string]int64, error) {
	var rows []bucketRow
	if err := readDB(r.db).WithContext(ctx).Model(&models.ProjectClick{}).
		Select("project_clicks.click_type AS bucket, COUNT(*) AS cnt").
		Joins("JOIN projects ON projects.id = project_clicks.project_id").
		Where("projects.user_id = ?", userID).
		Group("project_clicks.click_type").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Bucket] = row.Cnt
	}
	return out, nil
}
