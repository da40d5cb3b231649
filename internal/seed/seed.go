// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/pro-power/polishr-sub001/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	ProjectsPerMax int
	ViewsPerUser   int
	ClicksPerProj  int
	ShouldClean    bool
}

// Seed populates the database with demo portfolios and analytics events.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users with up to %d projects each...", opts.NumUsers, opts.ProjectsPerMax)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	factory := NewFactory(db)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		numProjects := 1
		if opts.ProjectsPerMax > 1 {
			numProjects += r.Intn(opts.ProjectsPerMax)
		}
		var projects []*models.Project
		for p := 0; p < numProjects; p++ {
			project, err := factory.CreateProject(user, p)
			if err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}
			projects = append(projects, project)
		}

		if err := factory.CreateProfileViews(user, opts.ViewsPerUser); err != nil {
			return fmt.Errorf("failed to create profile views: %w", err)
		}
		for _, project := range projects {
			if err := factory.CreateProjectClicks(project, r.Intn(opts.ClicksPerProj+1)); err != nil {
				return fmt.Errorf("failed to create project clicks: %w", err)
			}
		}
	}

	log.Printf("Seeding complete: %d users created", opts.NumUsers)
	return nil
}

// clearData removes seedable rows. Order matters for foreign keys.
func clearData(db *gorm.DB) error {
	tables := []any{
		&models.ProjectClick{},
		&models.ProfileView{},
		&models.EmailCapture{},
		&models.ProjectImage{},
		&models.Project{},
		&models.PasswordResetToken{},
		&models.EmailVerificationToken{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}
