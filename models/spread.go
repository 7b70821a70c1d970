package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Spread is one bookmaker's point handicap for a team, captured at Timestamp.
// Rows are append-only; the newest row per (game, team) is current.
type Spread struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	GameID    int                `json:"game_id" bson:"game_id"`
	Bookmaker string             `json:"bookmaker" bson:"bookmaker"`
	Team      string             `json:"team" bson:"team"`
	Point     float64            `json:"point" bson:"point"`
	Price     float64            `json:"price" bson:"price"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// IsUnderdog reports whether the handicap favors the other team
func (s *Spread) IsUnderdog() bool {
	return s.Point > 0
}

// Magnitude returns the absolute handicap, the value of an upset pick
func (s *Spread) Magnitude() float64 {
	return math.Abs(s.Point)
}

// NewerThan orders rows for "current spread" selection: later timestamp wins,
// equal timestamps fall back to bookmaker name.
func (s *Spread) NewerThan(other *Spread) bool {
	if !s.Timestamp.Equal(other.Timestamp) {
		return s.Timestamp.After(other.Timestamp)
	}
	return s.Bookmaker < other.Bookmaker
}
