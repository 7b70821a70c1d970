package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem-app/database/memory"
	"pickem-app/models"
)

func TestScheduleService_LoadInitial(t *testing.T) {
	ctx := context.Background()

	t.Run("loads once", func(t *testing.T) {
		env := newTestEnv(t)

		inserted, err := env.schedule.LoadInitial(ctx, []ScheduleRow{
			{GameID: 99, Kickoff: "2024-12-25T18:00:00Z", HomeTeam: chiefs, AwayTeam: raiders},
		})
		require.NoError(t, err)
		assert.Zero(t, inserted)

		games, err := env.schedule.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, games, len(fixtureRows))
	})

	t.Run("naive kickoff is UTC", func(t *testing.T) {
		env := newTestEnv(t)
		game, err := env.schedule.Get(ctx, 1)
		require.NoError(t, err)
		assert.True(t, game.Kickoff.Equal(time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC)))
	})

	t.Run("rejects bad rows", func(t *testing.T) {
		cases := []struct {
			name string
			rows []ScheduleRow
		}{
			{name: "missing id", rows: []ScheduleRow{{Kickoff: "2024-09-08T17:00:00", HomeTeam: chiefs, AwayTeam: ravens}}},
			{name: "same teams", rows: []ScheduleRow{{GameID: 1, Kickoff: "2024-09-08T17:00:00", HomeTeam: chiefs, AwayTeam: chiefs}}},
			{name: "bad kickoff", rows: []ScheduleRow{{GameID: 1, Kickoff: "sunday", HomeTeam: chiefs, AwayTeam: ravens}}},
			{name: "duplicate id", rows: []ScheduleRow{
				{GameID: 1, Kickoff: "2024-09-08T17:00:00", HomeTeam: chiefs, AwayTeam: ravens},
				{GameID: 1, Kickoff: "2024-09-08T18:00:00", HomeTeam: bills, AwayTeam: dolphins},
			}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				schedule := NewScheduleService(memory.NewGameRepository())
				_, err := schedule.LoadInitial(ctx, tc.rows)
				assert.ErrorIs(t, err, ErrValidation)

				games, err := schedule.ListAll(ctx)
				require.NoError(t, err)
				assert.Empty(t, games)
			})
		}
	})
}

func TestScheduleService_ListByWeek(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	week1, err := env.schedule.ListByWeek(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, week1, 4)

	week2, err := env.schedule.ListByWeek(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, week2, 2)

	_, err = env.schedule.ListByWeek(ctx, 19)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestScheduleService_UpsertResult(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.schedule.UpsertResult(ctx, 1, models.ResultUpdate{HomeScore: models.IntPtr(14), Completed: false})
	require.NoError(t, err)
	_, err = env.schedule.UpsertResult(ctx, 1, models.ResultUpdate{AwayScore: models.IntPtr(10), Completed: true})
	require.NoError(t, err)

	game, err := env.schedule.UpsertResult(ctx, 1, models.ResultUpdate{HomeScore: models.IntPtr(17)})
	require.NoError(t, err)
	assert.True(t, game.Completed, "completion is never reverted")
	assert.Equal(t, 17, *game.HomeScore)
	assert.Equal(t, 10, *game.AwayScore)

	_, err = env.schedule.UpsertResult(ctx, 404, models.ResultUpdate{Completed: true})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDataLoader_LoadScheduleFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schedule.json")
	seed := `[
		{"game_id": 1, "datetime": "2024-09-06T00:20:00", "home_team": "Kansas City Chiefs", "away_team": "Baltimore Ravens"},
		{"game_id": 2, "datetime": "2024-09-08T17:00:00", "home_team": "Atlanta Falcons", "away_team": "Pittsburgh Steelers"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	schedule := NewScheduleService(memory.NewGameRepository())
	loader := NewDataLoader(schedule)
	require.NoError(t, loader.LoadScheduleFile(ctx, path))
	require.NoError(t, loader.LoadScheduleFile(ctx, path))

	games, err := schedule.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, 1, games[0].Week())

	assert.Error(t, loader.LoadScheduleFile(ctx, filepath.Join(t.TempDir(), "missing.json")))
}
