package services

// Feed names used in ExternalDataError and logs
const (
	FeedScores = "scores"
	FeedOdds   = "odds"
)

// ScoreRow is one game from the scores feed. Scores are reported as strings
// and may be absent for games that have not started.
type ScoreRow struct {
	ExternalID   string      `json:"id" validate:"required"`
	HomeTeam     string      `json:"home_team" validate:"required"`
	AwayTeam     string      `json:"away_team" validate:"required,nefield=HomeTeam"`
	CommenceTime string      `json:"commence_time" validate:"required"`
	Completed    bool        `json:"completed"`
	Scores       []TeamScore `json:"scores" validate:"omitempty,max=2,dive"`
}

// TeamScore is a single team's reported score
type TeamScore struct {
	Name  string `json:"name" validate:"required"`
	Score string `json:"score" validate:"required,numeric"`
}

// OddsRow is one bookmaker outcome from the odds feed, flattened
type OddsRow struct {
	ExternalID   string  `json:"id" validate:"required"`
	HomeTeam     string  `json:"home_team" validate:"required"`
	AwayTeam     string  `json:"away_team" validate:"required,nefield=HomeTeam"`
	CommenceTime string  `json:"commence_time" validate:"required"`
	Bookmaker    string  `json:"bookmaker" validate:"required"`
	Team         string  `json:"team" validate:"required"`
	Point        float64 `json:"point"`
	Price        float64 `json:"price"`
}

// IngestSummary reports what a feed batch did
type IngestSummary struct {
	Received int     `json:"received"`
	Matched  int     `json:"matched"`
	Updated  int     `json:"updated"`
	Graded   int     `json:"graded"`
	Appended int     `json:"appended"`
	Skipped  int     `json:"skipped"`
	Failed   int     `json:"failed"`
	Errors   []error `json:"-"`
}

func (s *IngestSummary) skip(err error) {
	s.Skipped++
	s.Errors = append(s.Errors, err)
}

func (s *IngestSummary) fail(err error) {
	s.Failed++
	s.Errors = append(s.Errors, err)
}
