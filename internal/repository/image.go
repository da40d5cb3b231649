package repository

import (
	"context"
	"errors"

	"github.com/pro-power/polishr-sub001/internal/models"

	"gorm.io/gorm"
)

// ImageRepository defines persistence operations for project images.
// Positions are dense and zero-based within a project; the image at
// position 0 is mirrored onto the project's denormalized image_url.
type ImageRepository interface {
	ListByProject(ctx context.Context, projectID uint) ([]models.ProjectImage, error)
	Create(ctx context.Context, image *models.ProjectImage) error
	Delete(ctx context.Context, projectID, imageID uint) error
	Reorder(ctx context.Context, projectID uint, orderedIDs []uint) error
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository returns a new ImageRepository implementation.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) ListByProject(ctx context.Context, projectID uint) ([]models.ProjectImage, error) {
	var images []models.ProjectImage
	if err := readDB(r.db).WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&images).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}

// Create appends the image to the project's ordered set and refreshes
// the project's primary image URL when the new image lands first.
func (r *imageRepository) Create(ctx context.Context, image *models.ProjectImage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProjectImage{}).
			Where("project_id = ?", image.ProjectID).
			Count(&count).Error; err != nil {
			return err
		}
		image.Position = int(count)
		if err := tx.Create(image).Error; err != nil {
			return err
		}
		return resyncPrimaryImage(tx, image.ProjectID)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes an image, compacts positions past the removed slot,
// and resynchronizes the project's primary image URL, all in one
// transaction.
func (r *imageRepository) Delete(ctx context.Context, projectID, imageID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var image models.ProjectImage
		if err := tx.Where("id = ? AND project_id = ?", imageID, projectID).First(&image).Error; err != nil {
			return err
		}
		if err := tx.Delete(&image).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProjectImage{}).
			Where("project_id = ? AND position > ?", projectID, image.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error; err != nil {
			return err
		}
		return resyncPrimaryImage(tx, projectID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Image", imageID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Reorder assigns position = index for each image ID, scoped to the
// project, then resyncs the primary image URL in the same transaction.
// orderedIDs must be a complete permutation of the project's image set.
func (r *imageRepository) Reorder(ctx context.Context, projectID uint, orderedIDs []uint) error {
	var existingIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.ProjectImage{}).
		Where("project_id = ?", projectID).
		Pluck("id", &existingIDs).Error; err != nil {
		return models.NewInternalError(err)
	}

	if err := validatePermutation(existingIDs, orderedIDs); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, id := range orderedIDs {
			if err := tx.Model(&models.ProjectImage{}).
				Where("id = ? AND project_id = ?", id, projectID).
				UpdateColumn("position", idx).Error; err != nil {
				return err
			}
		}
		return resyncPrimaryImage(tx, projectID)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// resyncPrimaryImage points the project's image_url at the URL of the
// image currently holding position 0, or clears it when no images remain.
func resyncPrimaryImage(tx *gorm.DB, projectID uint) error {
	var first models.ProjectImage
	err := tx.Where("project_id = ?", projectID).
		Order("position ASC").
		First(&first).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			UpdateColumn("image_url", nil).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&models.Project{}).
		Where("id = ?", projectID).
		UpdateColumn("image_url", first.URL).Error
}
