// Package app assembles repositories and services from configuration. Both
// the API server and the standalone updater start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"pickem-app/config"
	"pickem-app/database"
	"pickem-app/database/memory"
	"pickem-app/interfaces"
	"pickem-app/logging"
	"pickem-app/services"
)

// Repositories is the storage backend in use
type Repositories struct {
	Games   interfaces.GameRepository
	Picks   interfaces.PickRepository
	Users   interfaces.UserRepository
	Spreads interfaces.SpreadRepository
}

// App holds every service built for one process
type App struct {
	Config   *config.Config
	Repos    Repositories
	DemoMode bool

	Schedule *services.ScheduleService
	Spreads  *services.SpreadService
	Picks    *services.PickService
	Results  *services.ResultService
	Scoring  *services.ScoringService
	Users    *services.UserService
	Auth     *services.AuthService
	Loader   *services.DataLoader

	db    *database.MongoDB
	cache *services.RedisLeaderboardCache
}

// Options controls how New reacts to an unreachable database
type Options struct {
	// AllowDemoMode falls back to in-memory repositories when MongoDB
	// cannot be reached
	AllowDemoMode bool
}

// New connects storage and the optional cache, then wires the services
func New(cfg *config.Config, opts Options) (*App, error) {
	logger := logging.WithPrefix("app")
	a := &App{Config: cfg}

	db, err := database.NewMongoConnection(cfg.ToDatabaseConfig())
	switch {
	case err == nil:
		if err := database.MigrateUp(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		a.db = db
		a.Repos = Repositories{
			Games:   database.NewMongoGameRepository(db),
			Picks:   database.NewMongoPickRepository(db),
			Users:   database.NewMongoUserRepository(db),
			Spreads: database.NewMongoSpreadRepository(db),
		}
	case opts.AllowDemoMode:
		logger.Warnf("Database connection failed: %v", err)
		logger.Warn("Continuing in demo mode with in-memory storage; data is lost on exit")
		a.DemoMode = true
		a.Repos = Repositories{
			Games:   memory.NewGameRepository(),
			Picks:   memory.NewPickRepository(),
			Users:   memory.NewUserRepository(),
			Spreads: memory.NewSpreadRepository(),
		}
	default:
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var cache services.LeaderboardCache
	if cfg.IsCacheConfigured() {
		redisCache, err := services.NewRedisLeaderboardCache(cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			logger.Warnf("Leaderboard cache disabled: %v", err)
		} else {
			a.cache = redisCache
			cache = redisCache
		}
	}

	a.Schedule = services.NewScheduleService(a.Repos.Games)
	a.Spreads = services.NewSpreadService(a.Repos.Spreads, a.Repos.Games)
	a.Picks = services.NewPickService(a.Repos.Picks, a.Schedule, a.Spreads, cache)
	a.Results = services.NewResultService(a.Repos.Games, a.Schedule, a.Repos.Picks, cache)
	a.Scoring = services.NewScoringService(a.Repos.Picks, a.Repos.Users, a.Schedule, cache)
	a.Users = services.NewUserService(a.Repos.Users, a.Repos.Picks, a.Scoring)
	a.Auth = services.NewAuthService(a.Repos.Users, cfg.Auth.JWTSecret, cfg.Auth.HandoffSecret, cfg.Auth.TokenExpiry)
	a.Loader = services.NewDataLoader(a.Schedule)

	return a, nil
}

// SeedSchedule loads the configured schedule file when the store is empty
func (a *App) SeedSchedule(ctx context.Context) error {
	if a.Config.App.SchedulePath == "" {
		return nil
	}
	return a.Loader.LoadScheduleFile(ctx, a.Config.App.SchedulePath)
}

// NewFeedUpdater builds the cron updater over the odds API client
func (a *App) NewFeedUpdater() *services.FeedUpdater {
	client := services.NewOddsClient(a.Config.ToOddsClientConfig())
	return services.NewFeedUpdater(client, a.Results, a.Spreads)
}

// Close releases the database and cache connections
func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
