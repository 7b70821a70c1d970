package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickKind distinguishes straight-up winner picks from underdog picks
type PickKind string

const (
	PickKindLock  PickKind = "lock"
	PickKindUpset PickKind = "upset"
)

// LockPoints is the flat value of a correct lock pick
const LockPoints = 3.0

// Weekly pick allowances per kind
const (
	MaxLocksPerWeek  = 2
	MaxUpsetsPerWeek = 1
)

// IsValid reports whether k is a known pick kind
func (k PickKind) IsValid() bool {
	return k == PickKindLock || k == PickKindUpset
}

// WeeklyLimit returns how many picks of this kind a user may hold in one week
func (k PickKind) WeeklyLimit() int {
	if k == PickKindUpset {
		return MaxUpsetsPerWeek
	}
	return MaxLocksPerWeek
}

// Pick is a user's selection for one game
type Pick struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	GameID    int                `json:"game_id" bson:"game_id"`
	Team      string             `json:"team" bson:"team"`
	Kind      PickKind           `json:"kind" bson:"kind"`
	Points    float64            `json:"points" bson:"points"`
	Correct   *bool              `json:"correct" bson:"correct"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// IsGraded returns true once the pick has a correctness value
func (p *Pick) IsGraded() bool {
	return p.Correct != nil
}

// IsCorrect returns true only for picks graded correct
func (p *Pick) IsCorrect() bool {
	return p.Correct != nil && *p.Correct
}

// IsLock returns true for lock picks
func (p *Pick) IsLock() bool {
	return p.Kind == PickKindLock
}

// BoolPtr is a small helper for building correctness values
func BoolPtr(v bool) *bool {
	return &v
}
