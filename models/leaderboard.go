package models

// LeaderboardEntry is one user's standing
type LeaderboardEntry struct {
	Rank         int           `json:"rank"`
	UserID       string        `json:"user_id"`
	DisplayName  string        `json:"display_name"`
	Score        float64       `json:"score"`
	CorrectPicks int           `json:"correct_picks"`
	GradedPicks  int           `json:"graded_picks"`
	TotalPicks   int           `json:"total_picks"`
	Winners      []CorrectPick `json:"winners"`
}

// CorrectPick describes a graded-correct pick for leaderboard detail
type CorrectPick struct {
	Week    int      `json:"week"`
	GameID  int      `json:"game_id"`
	Matchup string   `json:"matchup"`
	Team    string   `json:"team"`
	Kind    PickKind `json:"kind"`
	Points  float64  `json:"points"`
}

// Profile is the public view of a user
type Profile struct {
	User  User    `json:"user"`
	Score float64 `json:"score"`
	Picks []*Pick `json:"picks"`
}
