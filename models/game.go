package models

import (
	"fmt"
	"time"
)

// Game is a schedule entry. Scores stay nil until a feed reports them.
type Game struct {
	GameID    int       `json:"game_id" bson:"game_id"`
	Kickoff   time.Time `json:"kickoff" bson:"kickoff"`
	HomeTeam  string    `json:"home_team" bson:"home_team"`
	AwayTeam  string    `json:"away_team" bson:"away_team"`
	HomeScore *int      `json:"home_score,omitempty" bson:"home_score,omitempty"`
	AwayScore *int      `json:"away_score,omitempty" bson:"away_score,omitempty"`
	Completed bool      `json:"completed" bson:"completed"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Week returns the season week of the game's kickoff
func (g *Game) Week() int {
	return WeekOf(g.Kickoff)
}

// Date returns the kickoff's calendar date in the league timezone
func (g *Game) Date() string {
	return GameDate(g.Kickoff)
}

// HasStarted reports whether picks on this game are locked at now
func (g *Game) HasStarted(now time.Time) bool {
	return !now.Before(g.Kickoff)
}

// IsFinal returns true once the game is completed and both scores are known
func (g *Game) IsFinal() bool {
	return g.Completed && g.HomeScore != nil && g.AwayScore != nil
}

// Winner returns the winning team, or "" for a tie or an unfinished game
func (g *Game) Winner() string {
	if !g.IsFinal() {
		return ""
	}
	if *g.HomeScore > *g.AwayScore {
		return g.HomeTeam
	} else if *g.AwayScore > *g.HomeScore {
		return g.AwayTeam
	}
	return "" // tie
}

// HasTeam reports whether team plays in this game
func (g *Game) HasTeam(team string) bool {
	return team == g.HomeTeam || team == g.AwayTeam
}

// Matchup returns "AWAY @ HOME" using team abbreviations
func (g *Game) Matchup() string {
	return fmt.Sprintf("%s @ %s", TeamAbbr(g.AwayTeam), TeamAbbr(g.HomeTeam))
}

// ScoreString returns a formatted score string
func (g *Game) ScoreString() string {
	if g.HomeScore == nil || g.AwayScore == nil {
		return "vs"
	}
	return fmt.Sprintf("%d-%d", *g.AwayScore, *g.HomeScore)
}

// ResultUpdate carries the fields a result feed may supply for a game.
// Nil fields are left untouched in the store.
type ResultUpdate struct {
	HomeScore *int
	AwayScore *int
	Completed bool
	Kickoff   *time.Time
}

// IsEmpty reports whether the update would change nothing
func (u ResultUpdate) IsEmpty() bool {
	return u.HomeScore == nil && u.AwayScore == nil && !u.Completed && u.Kickoff == nil
}

// Apply merges the update into g following the partial-update rules
func (u ResultUpdate) Apply(g *Game) {
	if u.HomeScore != nil {
		v := *u.HomeScore
		g.HomeScore = &v
	}
	if u.AwayScore != nil {
		v := *u.AwayScore
		g.AwayScore = &v
	}
	if u.Completed {
		g.Completed = true
	}
	if u.Kickoff != nil {
		g.Kickoff = *u.Kickoff
	}
}

// IntPtr is a small helper for building score values
func IntPtr(v int) *int {
	return &v
}
