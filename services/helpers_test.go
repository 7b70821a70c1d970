package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pickem-app/database/memory"
	"pickem-app/models"
)

const (
	chiefs   = "Kansas City Chiefs"
	ravens   = "Baltimore Ravens"
	bills    = "Buffalo Bills"
	dolphins = "Miami Dolphins"
	eagles   = "Philadelphia Eagles"
	packers  = "Green Bay Packers"
	niners   = "San Francisco 49ers"
	jets     = "New York Jets"
	bengals  = "Cincinnati Bengals"
	raiders  = "Las Vegas Raiders"
)

// fixtureRows is a slice of the 2024 schedule. Games 1-4 are week 1,
// games 5-6 are week 2. Game 4 kicks off on Sep 8 Eastern but Sep 9 UTC.
var fixtureRows = []ScheduleRow{
	{GameID: 1, Kickoff: "2024-09-08T17:00:00", HomeTeam: chiefs, AwayTeam: ravens},
	{GameID: 2, Kickoff: "2024-09-08T18:00:00", HomeTeam: bills, AwayTeam: dolphins},
	{GameID: 3, Kickoff: "2024-09-08T20:00:00", HomeTeam: eagles, AwayTeam: packers},
	{GameID: 4, Kickoff: "2024-09-09T00:20:00", HomeTeam: niners, AwayTeam: jets},
	{GameID: 5, Kickoff: "2024-09-15T17:00:00", HomeTeam: chiefs, AwayTeam: bengals},
	{GameID: 6, Kickoff: "2024-09-15T17:00:00", HomeTeam: ravens, AwayTeam: raiders},
}

var beforeSeason = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	games    *memory.GameRepository
	picks    *memory.PickRepository
	users    *memory.UserRepository
	spreadDB *memory.SpreadRepository
	cache    *countingCache

	schedule *ScheduleService
	spreads  *SpreadService
	pickSvc  *PickService
	results  *ResultService
	scoring  *ScoringService
	userSvc  *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		games:    memory.NewGameRepository(),
		picks:    memory.NewPickRepository(),
		users:    memory.NewUserRepository(),
		spreadDB: memory.NewSpreadRepository(),
		cache:    &countingCache{},
	}
	env.schedule = NewScheduleService(env.games)
	env.spreads = NewSpreadService(env.spreadDB, env.games)
	env.spreads.SetClock(func() time.Time { return beforeSeason })
	env.pickSvc = NewPickService(env.picks, env.schedule, env.spreads, env.cache)
	env.pickSvc.SetClock(func() time.Time { return beforeSeason })
	env.results = NewResultService(env.games, env.schedule, env.picks, env.cache)
	env.scoring = NewScoringService(env.picks, env.users, env.schedule, env.cache)
	env.userSvc = NewUserService(env.users, env.picks, env.scoring)

	inserted, err := env.schedule.LoadInitial(context.Background(), fixtureRows)
	require.NoError(t, err)
	require.Equal(t, len(fixtureRows), inserted)
	return env
}

func (env *testEnv) setNow(now time.Time) {
	env.pickSvc.SetClock(func() time.Time { return now })
}

func (env *testEnv) lock(t *testing.T, userID string, gameID int, team string) *models.Pick {
	t.Helper()
	pick, err := env.pickSvc.SubmitPick(context.Background(), userID, gameID, team, models.PickKindLock, 0)
	require.NoError(t, err)
	return pick
}

func (env *testEnv) finish(t *testing.T, gameID, home, away int) {
	t.Helper()
	ctx := context.Background()
	_, err := env.schedule.UpsertResult(ctx, gameID, models.ResultUpdate{
		HomeScore: models.IntPtr(home),
		AwayScore: models.IntPtr(away),
		Completed: true,
	})
	require.NoError(t, err)
	require.NoError(t, env.results.RecomputeCorrectness(ctx, gameID))
}

func scoreRow(externalID, home, away, commence string, completed bool, homeScore, awayScore string) ScoreRow {
	row := ScoreRow{
		ExternalID:   externalID,
		HomeTeam:     home,
		AwayTeam:     away,
		CommenceTime: commence,
		Completed:    completed,
	}
	if homeScore != "" {
		row.Scores = append(row.Scores, TeamScore{Name: home, Score: homeScore})
	}
	if awayScore != "" {
		row.Scores = append(row.Scores, TeamScore{Name: away, Score: awayScore})
	}
	return row
}

// countingCache is an in-process LeaderboardCache that records invalidations.
// The invalidation count doubles as the generation.
type countingCache struct {
	mu            sync.Mutex
	entries       []models.LeaderboardEntry
	hasEntries    bool
	invalidations int
}

func (c *countingCache) Get(context.Context) ([]models.LeaderboardEntry, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries, int64(c.invalidations), c.hasEntries
}

func (c *countingCache) Set(_ context.Context, generation int64, entries []models.LeaderboardEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != int64(c.invalidations) {
		return
	}
	c.entries, c.hasEntries = entries, true
}

func (c *countingCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries, c.hasEntries = nil, false
	c.invalidations++
}

func (c *countingCache) Invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}
