package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pickem-app/app"
	"pickem-app/config"
	"pickem-app/handlers"
	"pickem-app/logging"
	"pickem-app/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	cfg.LogConfiguration()

	application, err := app.New(cfg, app.Options{AllowDemoMode: true})
	if err != nil {
		logging.Fatalf("Failed to initialise application: %v", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logging.Errorf("Error during shutdown: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.SeedSchedule(ctx); err != nil {
		logging.Errorf("Failed to load schedule: %v", err)
	}

	// In-process feed updater, for single-binary deployments
	if cfg.App.UpdaterEnabled {
		if !cfg.IsFeedConfigured() {
			logging.Warnf("Updater enabled but ODDS_API_KEY is not set; skipping")
		} else {
			updater := application.NewFeedUpdater()
			if err := updater.Start(cfg.ToUpdaterSchedule()); err != nil {
				logging.Fatalf("Failed to start feed updater: %v", err)
			}
			defer updater.Stop()
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(application.Auth)
	r := handlers.NewRouter(handlers.Router{
		Games:     handlers.NewGameHandler(application.Schedule, application.Spreads),
		Picks:     handlers.NewPickManagementHandler(application.Picks),
		Auth:      handlers.NewAuthHandler(application.Auth, application.Users, !cfg.App.IsDevelopment),
		Dashboard: handlers.NewDashboardHandler(application.Scoring, application.Users),
		AuthMW:    authMiddleware,
	})
	r.Use(middleware.RequestLogger, middleware.SecurityHeaders(cfg.Server.BehindProxy))

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Infof("Server starting on %s (demo mode: %t)", server.Addr, application.DemoMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Server shutdown error: %v", err)
	}
	logging.Info("Server stopped")
}
