package repository

import (
	"context"

	"github.com/pro-power/polishr-sub001/internal/models"

	"gorm.io/gorm"
)

// EmailCaptureRepository persists email addresses submitted on public
// profile pages.
type EmailCaptureRepository interface {
	Create(ctx context.Context, capture *models.EmailCapture) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.EmailCapture, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type emailCaptureRepository struct {
	db *gorm.DB
}

// NewEmailCaptureRepository returns a new EmailCaptureRepository implementation.
func NewEmailCaptureRepository(db *gorm.DB) EmailCaptureRepository {
	return &emailCaptureRepository{db: db}
}

func (r *emailCaptureRepository) Create(ctx context.Context, capture *models.EmailCapture) error {
	if err := r.db.WithContext(ctx).Create(capture).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *emailCaptureRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.EmailCapture, error) {
	var captures []models.EmailCapture
	if err := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&captures).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return captures, nil
}

func (r *emailCaptureRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.EmailCapture{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
