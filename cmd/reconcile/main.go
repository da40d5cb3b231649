// Command reconcile recomputes every project's cached click counter
// from the click event log. Run periodically to correct drift left by
// failed post-insert increments.
package main

import (
	"context"
	"log"

	"github.com/pro-power/polishr-sub001/internal/config"
	"github.com/pro-power/polishr-sub001/internal/database"
	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/repository"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var ids []uint
	if err := db.Model(&models.Project{}).Pluck("id", &ids).Error; err != nil {
		log.Fatalf("Failed to list projects: %v", err)
	}

	projects := repository.NewProjectRepository(db)
	ctx := context.Background()

	reconciled := 0
	for _, id := range ids {
		if _, err := projects.RecomputeClickCount(ctx, id); err != nil {
			log.Printf("project %d: recompute failed: %v", id, err)
			continue
		}
		reconciled++
	}

	log.Printf("Reconciled click counters for %d/%d projects", reconciled, len(ids))
}
