package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"pickem-app/logging"
)

// FeedSource is the external scores and odds provider
type FeedSource interface {
	FetchScores(ctx context.Context) ([]ScoreRow, error)
	FetchSpreads(ctx context.Context) ([]OddsRow, error)
}

// UpdaterSchedule holds cron specs for the feed jobs
type UpdaterSchedule struct {
	ScoreSpecs []string
	OddsSpec   string
	Location   *time.Location
	JobTimeout time.Duration
}

// FeedUpdater pulls the external feeds into the result and spread services
// on a cron timetable
type FeedUpdater struct {
	source  FeedSource
	results *ResultService
	spreads *SpreadService
	cron    *cron.Cron
	timeout time.Duration
	mu      sync.Mutex
	running bool
	logger  *logging.Logger
}

func NewFeedUpdater(source FeedSource, results *ResultService, spreads *SpreadService) *FeedUpdater {
	return &FeedUpdater{
		source:  source,
		results: results,
		spreads: spreads,
		timeout: 2 * time.Minute,
		logger:  logging.WithPrefix("FeedUpdater"),
	}
}

// UpdateScores fetches the scores feed once and ingests it
func (fu *FeedUpdater) UpdateScores(ctx context.Context) (IngestSummary, error) {
	rows, err := fu.source.FetchScores(ctx)
	if err != nil {
		return IngestSummary{}, err
	}
	return fu.results.IngestResults(ctx, rows), nil
}

// UpdateSpreads fetches the odds feed once and appends the spreads
func (fu *FeedUpdater) UpdateSpreads(ctx context.Context) (IngestSummary, error) {
	rows, err := fu.source.FetchSpreads(ctx)
	if err != nil {
		return IngestSummary{}, err
	}
	return fu.spreads.IngestSpreads(ctx, rows), nil
}

// Start registers the jobs and starts the scheduler
func (fu *FeedUpdater) Start(schedule UpdaterSchedule) error {
	fu.mu.Lock()
	defer fu.mu.Unlock()

	if fu.running {
		fu.logger.Warn("Already running")
		return nil
	}

	location := schedule.Location
	if location == nil {
		location = time.UTC
	}
	if schedule.JobTimeout > 0 {
		fu.timeout = schedule.JobTimeout
	}

	c := cron.New(cron.WithLocation(location))
	for _, spec := range schedule.ScoreSpecs {
		if _, err := c.AddFunc(spec, fu.runJob("scores", fu.UpdateScores)); err != nil {
			return fmt.Errorf("invalid score schedule %q: %w", spec, err)
		}
	}
	if schedule.OddsSpec != "" {
		if _, err := c.AddFunc(schedule.OddsSpec, fu.runJob("odds", fu.UpdateSpreads)); err != nil {
			return fmt.Errorf("invalid odds schedule %q: %w", schedule.OddsSpec, err)
		}
	}

	c.Start()
	fu.cron = c
	fu.running = true

	for _, entry := range c.Entries() {
		fu.logger.Infof("Next feed run at %s", entry.Next.Format(time.RFC3339))
	}
	return nil
}

// Stop halts the scheduler and waits for running jobs
func (fu *FeedUpdater) Stop() {
	fu.mu.Lock()
	defer fu.mu.Unlock()

	if !fu.running {
		return
	}
	fu.logger.Info("Stopping...")
	<-fu.cron.Stop().Done()
	fu.running = false
}

func (fu *FeedUpdater) runJob(name string, job func(context.Context) (IngestSummary, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), fu.timeout)
		defer cancel()

		started := time.Now()
		summary, err := job(ctx)
		if err != nil {
			fu.logger.Errorf("%s job failed: %v", name, err)
			return
		}
		fu.logger.Infof("%s job completed in %v: received=%d matched=%d skipped=%d failed=%d",
			name, time.Since(started).Round(time.Millisecond), summary.Received, summary.Matched, summary.Skipped, summary.Failed)
	}
}
