package interfaces

import (
	"context"

	"pickem-app/models"
)

// GameService defines the schedule reads used by handlers
type GameService interface {
	ListAll(ctx context.Context) ([]*models.Game, error)
	ListByWeek(ctx context.Context, week int) ([]*models.Game, error)
	Get(ctx context.Context, gameID int) (*models.Game, error)
}

// OddsService defines spread reads used by handlers
type OddsService interface {
	CurrentSpreads(ctx context.Context, gameID int) (map[string]*models.Spread, error)
	History(ctx context.Context, gameID int) ([]*models.Spread, error)
}

// PickService defines pick management operations
type PickService interface {
	SubmitPick(ctx context.Context, userID string, gameID int, team string, kind models.PickKind, points float64) (*models.Pick, error)
	SubmitUpsetPick(ctx context.Context, userID string, gameID int, team string) (*models.Pick, error)
	RemovePick(ctx context.Context, userID string, gameID int) error
	UserPicks(ctx context.Context, userID string) ([]*models.Pick, error)
	UserPicksForWeek(ctx context.Context, userID string, week int) ([]*models.Pick, error)
	LockedTeams(ctx context.Context, userID string) (map[string]struct{}, error)
}

// LeaderboardService defines scoring reads
type LeaderboardService interface {
	Score(ctx context.Context, userID string) (float64, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// UserService defines profile operations
type UserService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	Profile(ctx context.Context, username string) (*models.Profile, error)
	SetDisplayName(ctx context.Context, userID, displayName string) (*models.User, error)
}

// TokenValidator resolves a session token to its user
type TokenValidator interface {
	GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error)
}
