// Command main runs the database seeder for Polishr.
package main

import (
	"flag"
	"log"

	"github.com/pro-power/polishr-sub001/internal/config"
	"github.com/pro-power/polishr-sub001/internal/database"
	"github.com/pro-power/polishr-sub001/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	projectsMax := flag.Int("projects", 5, "Max projects per user")
	views := flag.Int("views", 40, "Profile views per user")
	clicks := flag.Int("clicks", 15, "Max clicks per project")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, up to %d projects each, clean=%v\n", *numUsers, *projectsMax, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:       *numUsers,
		ProjectsPerMax: *projectsMax,
		ViewsPerUser:   *views,
		ClicksPerProj:  *clicks,
		ShouldClean:    *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
