package repository

import (
	"context"
	"errors"

	"github.com/pro-power/polishr-sub001/internal/models"

	"gorm.io/gorm"
)

// ProjectRepository defines persistence operations for projects,
// including the position-ordering invariant: positions within one
// owner's set always form a dense zero-based sequence.
type ProjectRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	GetOwned(ctx context.Context, ownerID, id uint) (*models.Project, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error)
	ListVisibleByOwner(ctx context.Context, ownerID uint) ([]models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, ownerID, id uint) error
	Reorder(ctx context.Context, ownerID uint, orderedIDs []uint) error
	IncrementClickCount(ctx context.Context, projectID uint) error
	RecomputeClickCount(ctx context.Context, projectID uint) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository returns a new ProjectRepository implementation.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := readDB(r.db).WithContext(ctx).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &project, nil
}

func (r *projectRepository) GetOwned(ctx context.Context, ownerID, id uint) (*models.Project, error) {
	var project models.Project
	if err := readDB(r.db).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &project, nil
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := readDB(r.db).WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", ownerID).
		Order("position ASC").
		Find(&projects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) ListVisibleByOwner(ctx context.Context, ownerID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := readDB(r.db).WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ? AND public = ? AND status IN ?",
			ownerID, true, []string{models.ProjectStatusLive, models.ProjectStatusComingSoon}).
		Order("position ASC").
		Find(&projects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

// Create appends the project to the end of the owner's ordered set.
// The count query and the insert run in one transaction so concurrent
// creates cannot claim the same position.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).
			Where("user_id = ?", project.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		project.Position = int(count)
		return tx.Create(project).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes an owned project and compacts the gap it leaves:
// every project past the deleted position shifts down by one, keeping
// the owner's positions dense. Delete and shift commit together.
func (r *projectRepository) Delete(ctx context.Context, ownerID, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&project).Error; err != nil {
			return err
		}
		if err := tx.Delete(&project).Error; err != nil {
			return err
		}
		return tx.Model(&models.Project{}).
			Where("user_id = ? AND position > ?", ownerID, project.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Project", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Reorder assigns position = index for each ID in orderedIDs, in order,
// within a single transaction. orderedIDs must be a permutation of the
// owner's full project set: unknown IDs fail with Forbidden, duplicates
// or missing IDs with a validation error, and no writes happen on any
// failure.
func (r *projectRepository) Reorder(ctx context.Context, ownerID uint, orderedIDs []uint) error {
	var ownedIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("user_id = ?", ownerID).
		Pluck("id", &ownedIDs).Error; err != nil {
		return models.NewInternalError(err)
	}

	if err := validatePermutation(ownedIDs, orderedIDs); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, id := range orderedIDs {
			if err := tx.Model(&models.Project{}).
				Where("id = ? AND user_id = ?", id, ownerID).
				UpdateColumn("position", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) IncrementClickCount(ctx context.Context, projectID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		UpdateColumn("click_count", gorm.Expr("click_count + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Project", projectID)
	}
	return nil
}

// RecomputeClickCount reconciles the cached counter against the click
// event log, which is the source of truth, and returns the true count.
func (r *projectRepository) RecomputeClickCount(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProjectClick{}).
			Where("project_id = ?", projectID).
			Count(&count).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			UpdateColumn("click_count", count)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Project", projectID)
		}
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// validatePermutation checks that proposed is a complete permutation of
// owned. Ownership violations take precedence over shape problems so a
// cross-tenant probe is reported as Forbidden, not a validation slip.
func validatePermutation(owned, proposed []uint) error {
	ownedSet := make(map[uint]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}

	seen := make(map[uint]struct{}, len(proposed))
	for _, id := range proposed {
		if _, ok := ownedSet[id]; !ok {
			return models.NewForbiddenError("One or more items do not belong to you")
		}
		if _, dup := seen[id]; dup {
			return models.NewValidationError("Duplicate IDs in order")
		}
		seen[id] = struct{}{}
	}
	if len(proposed) != len(owned) {
		return models.NewValidationError("Order must include every item exactly once")
	}
	return nil
}
