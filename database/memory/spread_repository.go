package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pickem-app/database"
	"pickem-app/models"
)

// SpreadRepository is an append-only in-memory odds log
type SpreadRepository struct {
	mu      sync.RWMutex
	spreads []models.Spread
}

func NewSpreadRepository() *SpreadRepository {
	return &SpreadRepository{}
}

func (r *SpreadRepository) InsertMany(ctx context.Context, spreads []*models.Spread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range spreads {
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		r.spreads = append(r.spreads, *s)
	}
	return nil
}

func (r *SpreadRepository) FindByGame(ctx context.Context, gameID int) ([]*models.Spread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var spreads []*models.Spread
	for i := range r.spreads {
		if r.spreads[i].GameID == gameID {
			c := r.spreads[i]
			spreads = append(spreads, &c)
		}
	}
	sort.SliceStable(spreads, func(i, j int) bool { return spreads[i].NewerThan(spreads[j]) })
	return spreads, nil
}

func (r *SpreadRepository) FindLatest(ctx context.Context, gameID int, team string) (*models.Spread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.Spread
	for i := range r.spreads {
		s := &r.spreads[i]
		if s.GameID != gameID || s.Team != team {
			continue
		}
		if latest == nil || s.NewerThan(latest) {
			latest = s
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("spread for game %d team %s: %w", gameID, team, database.ErrNotFound)
	}
	c := *latest
	return &c, nil
}
