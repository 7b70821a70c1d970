package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"pickem-app/interfaces"
	"pickem-app/logging"
	"pickem-app/models"
)

// SpreadService appends odds snapshots and answers current-spread queries
type SpreadService struct {
	spreads  interfaces.SpreadRepository
	matcher  *feedMatcher
	validate *validator.Validate
	now      func() time.Time
	mu       sync.Mutex
	logger   *logging.Logger
}

func NewSpreadService(spreads interfaces.SpreadRepository, games interfaces.GameRepository) *SpreadService {
	return &SpreadService{
		spreads:  spreads,
		matcher:  newFeedMatcher(games),
		validate: validator.New(),
		now:      time.Now,
		logger:   logging.WithPrefix("spreads"),
	}
}

// SetClock replaces the time source used to stamp ingested rows
func (s *SpreadService) SetClock(now func() time.Time) {
	s.now = now
}

// IngestSpreads appends every matched outcome as a new spread row stamped
// with the ingestion time. Existing rows are never modified.
func (s *SpreadService) IngestSpreads(ctx context.Context, rows []OddsRow) IngestSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := IngestSummary{Received: len(rows)}
	stamp := s.now().UTC()

	spreads := make([]*models.Spread, 0, len(rows))
	for _, row := range rows {
		rowLogger := s.logger.WithFields(logging.Fields{"feed": FeedOdds, "external_id": row.ExternalID, "bookmaker": row.Bookmaker})

		if err := s.validate.StructCtx(ctx, row); err != nil {
			dataErr := &ExternalDataError{Feed: FeedOdds, ExternalID: row.ExternalID, Reason: err.Error()}
			rowLogger.Warnf("Row skipped: %v", dataErr)
			summary.skip(dataErr)
			continue
		}

		game, err := s.matcher.Match(ctx, FeedOdds, row.ExternalID, row.HomeTeam, row.AwayTeam, row.CommenceTime)
		if err != nil {
			if errors.Is(err, ErrPersistence) {
				rowLogger.Errorf("Row aborted: %v", err)
				summary.fail(err)
			} else {
				rowLogger.Warnf("Row skipped: %v", err)
				summary.skip(err)
			}
			continue
		}
		if !game.HasTeam(row.Team) {
			dataErr := &ExternalDataError{Feed: FeedOdds, ExternalID: row.ExternalID,
				Reason: fmt.Sprintf("outcome team %s is not in game %d", row.Team, game.GameID)}
			rowLogger.Warnf("Row skipped: %v", dataErr)
			summary.skip(dataErr)
			continue
		}
		summary.Matched++

		spreads = append(spreads, &models.Spread{
			GameID:    game.GameID,
			Bookmaker: row.Bookmaker,
			Team:      row.Team,
			Point:     row.Point,
			Price:     row.Price,
			Timestamp: stamp,
		})
	}

	if err := s.spreads.InsertMany(ctx, spreads); err != nil {
		s.logger.Errorf("Failed to append %d spreads: %v", len(spreads), err)
		summary.fail(&PersistenceError{Op: "append spreads", Err: err})
		return summary
	}
	summary.Appended = len(spreads)

	s.logger.Infof("Ingested %d odds rows: appended=%d skipped=%d", summary.Received, summary.Appended, summary.Skipped)
	return summary
}

// CurrentSpread returns the newest spread for a team in a game
func (s *SpreadService) CurrentSpread(ctx context.Context, gameID int, team string) (*models.Spread, error) {
	spread, err := s.spreads.FindLatest(ctx, gameID, team)
	if err != nil {
		return nil, storeError("find spread", "spread", fmt.Sprintf("%d/%s", gameID, team), err)
	}
	return spread, nil
}

// CurrentSpreads returns the newest spread per team for a game
func (s *SpreadService) CurrentSpreads(ctx context.Context, gameID int) (map[string]*models.Spread, error) {
	history, err := s.spreads.FindByGame(ctx, gameID)
	if err != nil {
		return nil, &PersistenceError{Op: "find spreads", Err: err}
	}

	current := make(map[string]*models.Spread)
	for _, spread := range history {
		if existing, ok := current[spread.Team]; !ok || spread.NewerThan(existing) {
			current[spread.Team] = spread
		}
	}
	return current, nil
}

// History returns every recorded spread for a game, newest first
func (s *SpreadService) History(ctx context.Context, gameID int) ([]*models.Spread, error) {
	history, err := s.spreads.FindByGame(ctx, gameID)
	if err != nil {
		return nil, &PersistenceError{Op: "find spreads", Err: err}
	}
	return history, nil
}
