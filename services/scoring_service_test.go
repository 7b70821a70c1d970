package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem-app/database/memory"
	"pickem-app/models"
)

func TestScoringService_ScoreSumsCorrectPicks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.lock(t, "u1", 1, chiefs)
	env.lock(t, "u1", 2, bills)
	_, err := env.pickSvc.SubmitPick(ctx, "u1", 3, packers, models.PickKindUpset, 7.5)
	require.NoError(t, err)

	env.finish(t, 1, 27, 20) // Chiefs win: lock correct
	env.finish(t, 2, 10, 20) // Dolphins win: lock incorrect
	env.finish(t, 3, 17, 24) // Packers win: upset correct

	score, err := env.scoring.Score(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10.5, score)

	board, err := env.scoring.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	entry := board[0]
	assert.Equal(t, 10.5, entry.Score)
	assert.Equal(t, 3, entry.TotalPicks)
	assert.Equal(t, 3, entry.GradedPicks)
	assert.Equal(t, 2, entry.CorrectPicks)
	require.Len(t, entry.Winners, 2)
	assert.Equal(t, "BAL @ KC", entry.Winners[0].Matchup)
	assert.Equal(t, models.PickKindUpset, entry.Winners[1].Kind)
	assert.Equal(t, 1, entry.Winners[1].Week)
}

func TestScoringService_Leaderboard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	at := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	for _, id := range []models.Identity{
		{Subject: "carol", Name: "Carol", Username: "carol"},
		{Subject: "alice", Name: "Alice", Username: "alice"},
		{Subject: "bob", Name: "Bob", Username: "bob"},
		{Subject: "dave", Name: "Dave", Username: "dave"},
	} {
		_, err := env.users.UpsertLogin(ctx, id, at)
		require.NoError(t, err)
	}
	_, err := env.users.SetDisplayName(ctx, "alice", "Ace")
	require.NoError(t, err)

	env.lock(t, "alice", 1, chiefs)
	env.lock(t, "bob", 1, chiefs)
	env.lock(t, "carol", 1, ravens)
	env.lock(t, "ghost", 1, chiefs) // owns picks but never logged in
	env.lock(t, "carol", 2, bills)  // game never completes

	env.finish(t, 1, 27, 20)

	board, err := env.scoring.Leaderboard(ctx)
	require.NoError(t, err)

	var order []string
	for _, e := range board {
		order = append(order, e.UserID)
	}
	assert.Equal(t, []string{"alice", "bob", "ghost", "carol", "dave"}, order)
	assert.Equal(t, []int{1, 1, 1, 4, 4}, []int{board[0].Rank, board[1].Rank, board[2].Rank, board[3].Rank, board[4].Rank})

	assert.Equal(t, "Ace", board[0].DisplayName)
	assert.Equal(t, "ghost", board[2].DisplayName)
	assert.Equal(t, 2, board[3].TotalPicks)
	assert.Equal(t, 1, board[3].GradedPicks)
	assert.Zero(t, board[3].Score)
	assert.Zero(t, board[4].TotalPicks)
	assert.NotNil(t, board[4].Winners)
}

func TestScoringService_LeaderboardCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.lock(t, "u1", 1, chiefs)
	board, err := env.scoring.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Zero(t, board[0].Score)

	// Writes that bypass the services are not seen until the next invalidation
	require.NoError(t, env.picks.Replace(ctx, &models.Pick{UserID: "u2", GameID: 1, Team: chiefs, Kind: models.PickKindLock, Points: models.LockPoints}))
	board, err = env.scoring.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Len(t, board, 1)

	env.finish(t, 1, 30, 3)
	board, err = env.scoring.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, models.LockPoints, board[0].Score)
	assert.Equal(t, models.LockPoints, board[1].Score)

	// Submitting a pick invalidates too
	env.lock(t, "u3", 5, chiefs)
	board, err = env.scoring.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Len(t, board, 3)
}

// gradingPickRepository runs afterRead once, right after the first FindAll
type gradingPickRepository struct {
	*memory.PickRepository
	once      sync.Once
	afterRead func()
}

func (r *gradingPickRepository) FindAll(ctx context.Context) ([]*models.Pick, error) {
	picks, err := r.PickRepository.FindAll(ctx)
	r.once.Do(r.afterRead)
	return picks, err
}

func TestScoringService_LeaderboardComputedBeforeGradingIsNotCached(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.lock(t, "u1", 1, chiefs)

	picks := &gradingPickRepository{PickRepository: env.picks}
	picks.afterRead = func() {
		summary := env.results.IngestResults(ctx, []ScoreRow{
			scoreRow("feed-1", chiefs, ravens, "2024-09-08T17:00:00Z", true, "27", "20"),
		})
		require.Equal(t, 1, summary.Graded)
	}
	scoring := NewScoringService(picks, env.users, env.schedule, env.cache)

	// Built from picks read before the grade landed
	board, err := scoring.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Zero(t, board[0].Score)

	score, err := scoring.Score(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.LockPoints, score)

	board, err = scoring.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, score, board[0].Score)
}
