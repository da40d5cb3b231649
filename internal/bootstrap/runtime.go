// Package bootstrap establishes runtime dependencies for commands.
package bootstrap

import (
	"fmt"

	"github.com/pro-power/polishr-sub001/internal/cache"
	"github.com/pro-power/polishr-sub001/internal/config"
	"github.com/pro-power/polishr-sub001/internal/database"
	"github.com/pro-power/polishr-sub001/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemoData bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
// A nil Redis client is returned when Redis is unreachable; callers
// degrade to in-process rate limiting and no caching.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData {
		if err := seed.Seed(db, seed.Options{
			NumUsers:       10,
			ProjectsPerMax: 5,
			ViewsPerUser:   40,
			ClicksPerProj:  15,
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}
