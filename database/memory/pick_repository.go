package memory

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pickem-app/models"
)

// PickRepository keeps picks in memory, ordered by insertion
type PickRepository struct {
	mu    sync.RWMutex
	picks []*models.Pick

	// FailWrites makes every mutating call return this error when set
	FailWrites error
}

func NewPickRepository() *PickRepository {
	return &PickRepository{}
}

func (r *PickRepository) FindByUser(ctx context.Context, userID string) ([]*models.Pick, error) {
	return r.filter(func(p *models.Pick) bool { return p.UserID == userID }), nil
}

func (r *PickRepository) FindByGame(ctx context.Context, gameID int) ([]*models.Pick, error) {
	return r.filter(func(p *models.Pick) bool { return p.GameID == gameID }), nil
}

func (r *PickRepository) FindAll(ctx context.Context) ([]*models.Pick, error) {
	return r.filter(func(*models.Pick) bool { return true }), nil
}

func (r *PickRepository) filter(keep func(*models.Pick) bool) []*models.Pick {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var picks []*models.Pick
	for _, pick := range r.picks {
		if keep(pick) {
			picks = append(picks, clonePick(pick))
		}
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].CreatedAt.Before(picks[j].CreatedAt)
	})
	return picks
}

func (r *PickRepository) Replace(ctx context.Context, pick *models.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites != nil {
		return r.FailWrites
	}
	if pick.ID.IsZero() {
		pick.ID = primitive.NewObjectID()
	}

	r.removeLocked(pick.UserID, pick.GameID)
	r.picks = append(r.picks, clonePick(pick))
	return nil
}

func (r *PickRepository) DeleteByUserAndGame(ctx context.Context, userID string, gameID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites != nil {
		return 0, r.FailWrites
	}
	return r.removeLocked(userID, gameID), nil
}

func (r *PickRepository) removeLocked(userID string, gameID int) int64 {
	var removed int64
	kept := r.picks[:0]
	for _, p := range r.picks {
		if p.UserID == userID && p.GameID == gameID {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	r.picks = kept
	return removed
}

func (r *PickRepository) SetCorrectByGame(ctx context.Context, gameID int, winner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites != nil {
		return 0, r.FailWrites
	}

	var matched int64
	for _, p := range r.picks {
		if p.GameID != gameID {
			continue
		}
		matched++
		if winner == "" {
			p.Correct = nil
		} else {
			p.Correct = models.BoolPtr(p.Team == winner)
		}
	}
	return matched, nil
}

func clonePick(p *models.Pick) *models.Pick {
	c := *p
	if p.Correct != nil {
		c.Correct = models.BoolPtr(*p.Correct)
	}
	return &c
}
