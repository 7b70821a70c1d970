package interfaces

import (
	"context"
	"time"

	"pickem-app/models"
)

// Repositories return database.ErrNotFound (wrapped) only when the requested
// key does not exist; every other failure is a store error.

// GameRepository stores the schedule
type GameRepository interface {
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, games []*models.Game) error
	FindByID(ctx context.Context, gameID int) (*models.Game, error)
	FindAll(ctx context.Context) ([]*models.Game, error)
	FindByMatchup(ctx context.Context, homeTeam, awayTeam string) ([]*models.Game, error)
	UpsertResult(ctx context.Context, gameID int, update models.ResultUpdate) (*models.Game, error)
}

// PickRepository stores user picks
type PickRepository interface {
	FindByUser(ctx context.Context, userID string) ([]*models.Pick, error)
	FindByGame(ctx context.Context, gameID int) ([]*models.Pick, error)
	FindAll(ctx context.Context) ([]*models.Pick, error)
	// Replace deletes any pick for (pick.UserID, pick.GameID) and inserts pick
	Replace(ctx context.Context, pick *models.Pick) error
	DeleteByUserAndGame(ctx context.Context, userID string, gameID int) (int64, error)
	// SetCorrectByGame grades every pick on the game against winner; an
	// empty winner clears correctness
	SetCorrectByGame(ctx context.Context, gameID int, winner string) (int64, error)
}

// UserRepository stores users
type UserRepository interface {
	UpsertLogin(ctx context.Context, identity models.Identity, at time.Time) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	SetDisplayName(ctx context.Context, userID, displayName string) (*models.User, error)
}

// SpreadRepository is the append-only odds log
type SpreadRepository interface {
	InsertMany(ctx context.Context, spreads []*models.Spread) error
	FindByGame(ctx context.Context, gameID int) ([]*models.Spread, error)
	FindLatest(ctx context.Context, gameID int, team string) (*models.Spread, error)
}
