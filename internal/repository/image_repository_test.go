package repository

import (
	"context"
	"testing"

	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedImages(t *testing.T, db *gorm.DB, repo ImageRepository, projectID uint, urls ...string) []models.ProjectImage {
	t.Helper()
	ctx := context.Background()
	for _, url := range urls {
		require.NoError(t, repo.Create(ctx, &models.ProjectImage{ProjectID: projectID, URL: url}))
	}
	images, err := repo.ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, images, len(urls))
	return images
}

func projectImageURL(t *testing.T, db *gorm.DB, projectID uint) *string {
	t.Helper()
	var project models.Project
	require.NoError(t, db.First(&project, projectID).Error)
	return project.ImageURL
}

func TestImageRepository_CreateAssignsPositionsAndPrimary(t *testing.T) {
	t.Parallel()

	db := testutil.OpenTestDB(t)
	owner := seedUser(t, db, "owner")
	projects := seedProjects(t, db, NewProjectRepository(db), owner.ID, 1)
	repo := NewImageRepository(db)

	images := seedImages(t, db, repo, projects[0].ID, "https://img/a.png", "https://img/b.png")

	assert.Equal(t, 0, images[0].Position)
	assert.Equal(t, 1, images[1].Position)

	primary := projectImageURL(t, db, projects[0].ID)
	require.NotNil(t, primary)
	assert.Equal(t, "https://img/a.png", *primary, "first image becomes the primary")
}

func TestImageRepository_DeleteCompactsAndResyncsPrimary(t *testing.T) {
	t.Parallel()

	db := testutil.OpenTestDB(t)
	owner := seedUser(t, db, "owner")
	projects := seedProjects(t, db, NewProjectRepository(db), owner.ID, 1)
	repo := NewImageRepository(db)
	ctx := context.Background()

	images := seedImages(t, db, repo, projects[0].ID,
		"https://img/a.png", "https://img/b.png", "https://img/c.png")

	// Deleting the primary promotes the next image to position 0.
	require.NoError(t, repo.Delete(ctx, projects[0].ID, images[0].ID))

	remaining, err := repo.ListByProject(ctx, projects[0].ID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, 0, remaining[0].Position)
	assert.Equal(t, "https://img/b.png", remaining[0].URL)
	assert.Equal(t, 1, remaining[1].Position)

	primary := projectImageURL(t, db, projects[0].ID)
	require.NotNil(t, primary)
	assert.Equal(t, "https://img/b.png", *primary)
}

func TestImageRepository_DeleteLastImageClearsPrimary(t *testing.T) {
	t.Parallel()

	db := testutil.OpenTestDB(t)
	owner := seedUser(t, db, "owner")
	projects := seedProjects(t, db, NewProjectRepository(db), owner.ID, 1)
	repo := NewImageRepository(db)
	ctx := context.Background()

	images := seedImages(t, db, repo, projects[0].ID, "https://img/a.png")
	require.NoError(t, repo.Delete(ctx, projects[0].ID, images[0].ID))

	assert.Nil(t, projectImageURL(t, db, projects[0].ID))
}

func TestImageRepository_DeleteScopedToProject(t *testing.T) {
	t.Parallel()

	db := testutil.OpenTestDB(t)
	owner := seedUser(t, db, "owner")
	projects := seedProjects(t, db, NewProjectRepository(db), owner.ID, 2)
	repo := NewImageRepository(db)
	ctx := context.Background()

	images := seedImages(t, db, repo, projects[0].ID, "https://img/a.png")

	err := repo.Delete(ctx, projects[1].ID, images[0].ID)
	assert.Equal(t, "NOT_FOUND", appErrorCode(t, err))
}

func TestImageRepository_ReorderResyncsPrimary(t *testing.T) {
	t.Parallel()

	db := testutil.OpenTestDB(t)
	owner := seedUser(t, db, "owner")
	projects := seedProjects(t, db, NewProjectRepository(db), owner.ID, 1)
	repo := NewImageRepository(db)
	ctx := context.Background()

	images := seedImages(t, db, repo, projects[0].ID,
		"https://img/a.png", "https://img/b.png", "https://img/c.png")

	require.NoError(t, repo.Reorder(ctx, projects[0].ID,
		[]uint{images[2].ID, images[0].ID, images[1].ID}))

	reordered, err := repo.ListByProject(ctx, projects[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "https://img/c.png", reordered[0].URL)

	primary := projectImageURL(t, db, projects[0].ID)
	require.NotNil(t, primary)
	assert.Equal(t, "https://img/c.png", *primary)
}

func TestImageRepository_ReorderRejectsIncompleteSet(t *testing.T) {
	t.Parallel()

	db := testutil.OpenTestDB(t)
	owner := seedUser(t, db, "owner")
	projects := seedProjects(t, db, NewProjectRepository(db), owner.ID, 1)
	repo := NewImageRepository(db)
	ctx := context.Background()

	images := seedImages(t, db, repo, projects[0].ID, "https://img/a.png", "https://img/b.png")

	err := repo.Reorder(ctx, projects[0].ID, []uint{images[0].ID})
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))
}
