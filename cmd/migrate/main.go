// Command migrate applies the database schema explicitly. Production
// deployments run this before rolling out a new server build; other
// environments automigrate on connect.
package main

import (
	"log"

	"github.com/pro-power/polishr-sub001/internal/config"
	"github.com/pro-power/polishr-sub001/internal/database"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations applied")
}
