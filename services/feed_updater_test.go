package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeed struct {
	scores []ScoreRow
	odds   []OddsRow
	err    error
}

func (f *stubFeed) FetchScores(context.Context) ([]ScoreRow, error) { return f.scores, f.err }
func (f *stubFeed) FetchSpreads(context.Context) ([]OddsRow, error) { return f.odds, f.err }

func TestFeedUpdater(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.lock(t, "u1", 1, chiefs)

	feed := &stubFeed{
		scores: []ScoreRow{scoreRow("e1", chiefs, ravens, "2024-09-08T17:00:00Z", true, "27", "20")},
		odds:   []OddsRow{oddsRow("fanduel", ravens, 3)},
	}
	updater := NewFeedUpdater(feed, env.results, env.spreads)

	summary, err := updater.UpdateScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Graded)

	summary, err = updater.UpdateSpreads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Appended)

	feed.err = errors.New("feed down")
	_, err = updater.UpdateScores(ctx)
	assert.Error(t, err)
}

func TestFeedUpdater_Start(t *testing.T) {
	env := newTestEnv(t)
	updater := NewFeedUpdater(&stubFeed{}, env.results, env.spreads)

	err := updater.Start(UpdaterSchedule{ScoreSpecs: []string{"not a cron spec"}})
	assert.Error(t, err)

	require.NoError(t, updater.Start(UpdaterSchedule{
		ScoreSpecs: []string{"0 8 * * 5,1", "0 22 * * 0,1"},
		OddsSpec:   "0 12 * * *",
	}))
	require.NoError(t, updater.Start(UpdaterSchedule{}))
	updater.Stop()
	updater.Stop()
}
