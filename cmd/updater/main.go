// Command updater pulls scores and spreads from the odds API on a cron
// timetable. With -once it runs both jobs a single time and exits.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"pickem-app/app"
	"pickem-app/config"
	"pickem-app/logging"
)

func main() {
	once := flag.Bool("once", false, "run the score and odds jobs once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	logger := logging.WithPrefix("updater")

	if !cfg.IsFeedConfigured() {
		logger.Fatalf("ODDS_API_KEY is required")
	}

	application, err := app.New(cfg, app.Options{})
	if err != nil {
		logger.Fatalf("Failed to initialise application: %v", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.SeedSchedule(ctx); err != nil {
		logger.Errorf("Failed to load schedule: %v", err)
	}

	updater := application.NewFeedUpdater()

	if *once {
		scores, err := updater.UpdateScores(ctx)
		if err != nil {
			logger.Errorf("Score update failed: %v", err)
		} else {
			logger.Infof("Scores: %+v", scores)
		}
		odds, err := updater.UpdateSpreads(ctx)
		if err != nil {
			logger.Errorf("Spread update failed: %v", err)
		} else {
			logger.Infof("Spreads: %+v", odds)
		}
		return
	}

	if err := updater.Start(cfg.ToUpdaterSchedule()); err != nil {
		logger.Fatalf("Failed to start updater: %v", err)
	}
	logger.Infof("Updater running (scores=%v, odds=%q, UTC)", cfg.App.ScoreSchedules, cfg.App.OddsSchedule)

	<-ctx.Done()
	logger.Info("Stopping updater...")
	updater.Stop()
}
