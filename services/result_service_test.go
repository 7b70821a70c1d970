package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem-app/models"
)

func TestResultService_IngestResults(t *testing.T) {
	ctx := context.Background()

	t.Run("completed row grades picks", func(t *testing.T) {
		env := newTestEnv(t)
		env.lock(t, "u1", 1, chiefs)
		env.lock(t, "u2", 1, ravens)
		invalidated := env.cache.Invalidations()

		summary := env.results.IngestResults(ctx, []ScoreRow{
			scoreRow("feed-abc", chiefs, ravens, "2024-09-08T17:00:00Z", true, "27", "20"),
		})
		assert.Equal(t, 1, summary.Matched)
		assert.Equal(t, 1, summary.Updated)
		assert.Equal(t, 1, summary.Graded)
		assert.Zero(t, summary.Skipped)

		game, err := env.schedule.Get(ctx, 1)
		require.NoError(t, err)
		assert.True(t, game.Completed)
		assert.Equal(t, 27, *game.HomeScore)
		assert.Equal(t, 20, *game.AwayScore)

		winner, _ := env.pickSvc.UserPicks(ctx, "u1")
		loser, _ := env.pickSvc.UserPicks(ctx, "u2")
		require.NotNil(t, winner[0].Correct)
		require.NotNil(t, loser[0].Correct)
		assert.True(t, *winner[0].Correct)
		assert.False(t, *loser[0].Correct)
		assert.Equal(t, invalidated+1, env.cache.Invalidations())
	})

	t.Run("rows are matched by teams and Eastern date", func(t *testing.T) {
		env := newTestEnv(t)

		// Sep 9 00:20 UTC is Sep 8 in New York, the same day as game 4
		summary := env.results.IngestResults(ctx, []ScoreRow{
			scoreRow("x", niners, jets, "2024-09-09T00:20:00Z", false, "7", "0"),
		})
		assert.Equal(t, 1, summary.Matched)

		game, err := env.schedule.Get(ctx, 4)
		require.NoError(t, err)
		require.NotNil(t, game.HomeScore)
		assert.Equal(t, 7, *game.HomeScore)

		summary = env.results.IngestResults(ctx, []ScoreRow{
			scoreRow("x", niners, jets, "2024-09-09T18:00:00Z", false, "14", "0"),
			scoreRow("y", jets, niners, "2024-09-09T00:20:00Z", false, "0", "14"),
		})
		assert.Zero(t, summary.Matched)
		assert.Equal(t, 2, summary.Skipped)
		for _, err := range summary.Errors {
			assert.ErrorIs(t, err, ErrExternalData)
		}

		game, err = env.schedule.Get(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 7, *game.HomeScore)
	})

	t.Run("live update leaves picks ungraded", func(t *testing.T) {
		env := newTestEnv(t)
		env.lock(t, "u1", 2, bills)

		summary := env.results.IngestResults(ctx, []ScoreRow{
			scoreRow("live", bills, dolphins, "2024-09-08T18:00:00Z", false, "10", ""),
		})
		assert.Equal(t, 1, summary.Updated)
		assert.Zero(t, summary.Graded)

		summary = env.results.IngestResults(ctx, []ScoreRow{
			scoreRow("live", bills, dolphins, "2024-09-08T18:00:00Z", false, "", "3"),
		})
		assert.Equal(t, 1, summary.Updated)

		game, err := env.schedule.Get(ctx, 2)
		require.NoError(t, err)
		assert.False(t, game.Completed)
		assert.Equal(t, 10, *game.HomeScore)
		assert.Equal(t, 3, *game.AwayScore)

		picks, _ := env.pickSvc.UserPicks(ctx, "u1")
		assert.Nil(t, picks[0].Correct)
	})

	t.Run("completed row missing a score is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		summary := env.results.IngestResults(ctx, []ScoreRow{
			scoreRow("bad", eagles, packers, "2024-09-08T20:00:00Z", true, "21", ""),
		})
		assert.Equal(t, 1, summary.Skipped)
		require.Len(t, summary.Errors, 1)
		assert.ErrorIs(t, summary.Errors[0], ErrExternalData)

		game, err := env.schedule.Get(ctx, 3)
		require.NoError(t, err)
		assert.False(t, game.Completed)
		assert.Nil(t, game.HomeScore)
	})

	t.Run("malformed rows are skipped", func(t *testing.T) {
		env := newTestEnv(t)

		summary := env.results.IngestResults(ctx, []ScoreRow{
			{ExternalID: "no-teams", CommenceTime: "2024-09-08T17:00:00Z"},
			scoreRow("bad-date", chiefs, ravens, "next sunday", false, "", ""),
			scoreRow("bad-score", chiefs, ravens, "2024-09-08T17:00:00Z", false, "ten", ""),
			{ExternalID: "stranger", HomeTeam: chiefs, AwayTeam: ravens, CommenceTime: "2024-09-08T17:00:00Z",
				Scores: []TeamScore{{Name: bills, Score: "3"}}},
			scoreRow("ok", chiefs, ravens, "2024-09-08T17:00:00Z", false, "3", "0"),
		})
		assert.Equal(t, 5, summary.Received)
		assert.Equal(t, 4, summary.Skipped)
		assert.Equal(t, 1, summary.Updated)
	})

	t.Run("tie clears correctness", func(t *testing.T) {
		env := newTestEnv(t)
		env.lock(t, "u1", 3, eagles)
		env.lock(t, "u2", 3, packers)

		summary := env.results.IngestResults(ctx, []ScoreRow{
			scoreRow("tie", eagles, packers, "2024-09-08T20:00:00Z", true, "17", "17"),
		})
		assert.Equal(t, 1, summary.Graded)

		all, err := env.picks.FindByGame(ctx, 3)
		require.NoError(t, err)
		require.Len(t, all, 2)
		for _, p := range all {
			assert.Nil(t, p.Correct)
		}
	})

	t.Run("reingesting is idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		env.lock(t, "u1", 1, chiefs)
		env.lock(t, "u2", 1, ravens)
		rows := []ScoreRow{scoreRow("a", chiefs, ravens, "2024-09-08T17:00:00Z", true, "27", "20")}

		env.results.IngestResults(ctx, rows)
		first, err := env.picks.FindAll(ctx)
		require.NoError(t, err)

		env.results.IngestResults(ctx, rows)
		require.NoError(t, env.results.RecomputeCorrectness(ctx, 1))
		second, err := env.picks.FindAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("persistence failure aborts only its row", func(t *testing.T) {
		env := newTestEnv(t)
		env.lock(t, "u1", 1, chiefs)
		env.picks.FailWrites = errors.New("write concern timeout")

		summary := env.results.IngestResults(ctx, []ScoreRow{
			scoreRow("a", chiefs, ravens, "2024-09-08T17:00:00Z", true, "27", "20"),
			scoreRow("b", bills, dolphins, "2024-09-08T18:00:00Z", false, "7", "0"),
		})
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, 2, summary.Updated)
		require.Len(t, summary.Errors, 1)
		assert.ErrorIs(t, summary.Errors[0], ErrPersistence)

		env.picks.FailWrites = nil
		require.NoError(t, env.results.RecomputeCorrectness(ctx, 1))
		picks, _ := env.pickSvc.UserPicks(ctx, "u1")
		assert.True(t, picks[0].IsCorrect())
	})
}

func TestResultService_RecomputeCorrectness(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.lock(t, "u1", 1, chiefs)
	invalidated := env.cache.Invalidations()

	// Not completed: nothing to grade
	_, err := env.schedule.UpsertResult(ctx, 1, models.ResultUpdate{HomeScore: models.IntPtr(3), AwayScore: models.IntPtr(0)})
	require.NoError(t, err)
	require.NoError(t, env.results.RecomputeCorrectness(ctx, 1))
	picks, _ := env.pickSvc.UserPicks(ctx, "u1")
	assert.Nil(t, picks[0].Correct)
	assert.Equal(t, invalidated, env.cache.Invalidations())

	env.finish(t, 1, 10, 24)
	picks, _ = env.pickSvc.UserPicks(ctx, "u1")
	require.NotNil(t, picks[0].Correct)
	assert.False(t, *picks[0].Correct)

	assert.ErrorIs(t, env.results.RecomputeCorrectness(ctx, 404), ErrNotFound)
}
