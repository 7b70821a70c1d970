package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pickem-app/database"
	"pickem-app/models"
)

// GameRepository keeps the schedule in memory for demo mode and tests
type GameRepository struct {
	mu    sync.RWMutex
	games map[int]*models.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{games: make(map[int]*models.Game)}
}

func (r *GameRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.games)), nil
}

func (r *GameRepository) InsertMany(ctx context.Context, games []*models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, game := range games {
		if _, exists := r.games[game.GameID]; exists {
			return fmt.Errorf("duplicate game_id %d", game.GameID)
		}
	}
	for _, game := range games {
		r.games[game.GameID] = cloneGame(game)
	}
	return nil
}

func (r *GameRepository) FindByID(ctx context.Context, gameID int) (*models.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	game, ok := r.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %d: %w", gameID, database.ErrNotFound)
	}
	return cloneGame(game), nil
}

func (r *GameRepository) FindAll(ctx context.Context) ([]*models.Game, error) {
	return r.filter(func(*models.Game) bool { return true }), nil
}

func (r *GameRepository) FindByMatchup(ctx context.Context, homeTeam, awayTeam string) ([]*models.Game, error) {
	return r.filter(func(g *models.Game) bool {
		return g.HomeTeam == homeTeam && g.AwayTeam == awayTeam
	}), nil
}

func (r *GameRepository) filter(keep func(*models.Game) bool) []*models.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var games []*models.Game
	for _, game := range r.games {
		if keep(game) {
			games = append(games, cloneGame(game))
		}
	}
	sort.Slice(games, func(i, j int) bool {
		if !games[i].Kickoff.Equal(games[j].Kickoff) {
			return games[i].Kickoff.Before(games[j].Kickoff)
		}
		return games[i].GameID < games[j].GameID
	})
	return games
}

func (r *GameRepository) UpsertResult(ctx context.Context, gameID int, update models.ResultUpdate) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	game, ok := r.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %d: %w", gameID, database.ErrNotFound)
	}
	update.Apply(game)
	game.UpdatedAt = time.Now().UTC()
	return cloneGame(game), nil
}

func cloneGame(g *models.Game) *models.Game {
	c := *g
	if g.HomeScore != nil {
		c.HomeScore = models.IntPtr(*g.HomeScore)
	}
	if g.AwayScore != nil {
		c.AwayScore = models.IntPtr(*g.AwayScore)
	}
	return &c
}
