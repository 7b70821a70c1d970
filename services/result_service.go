package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"pickem-app/interfaces"
	"pickem-app/logging"
	"pickem-app/models"
)

// ResultService reconciles the scores feed with the schedule and grades picks
type ResultService struct {
	schedule *ScheduleService
	picks    interfaces.PickRepository
	matcher  *feedMatcher
	cache    LeaderboardCache
	validate *validator.Validate
	mu       sync.Mutex
	logger   *logging.Logger
}

// NewResultService creates a result service. cache may be nil.
func NewResultService(games interfaces.GameRepository, schedule *ScheduleService, picks interfaces.PickRepository, cache LeaderboardCache) *ResultService {
	return &ResultService{
		schedule: schedule,
		picks:    picks,
		matcher:  newFeedMatcher(games),
		cache:    cacheOrNoop(cache),
		validate: validator.New(),
		logger:   logging.WithPrefix("results"),
	}
}

// IngestResults applies a batch of score rows. Bad rows are logged and
// skipped; a store failure only aborts the row it happened on.
func (s *ResultService) IngestResults(ctx context.Context, rows []ScoreRow) IngestSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := IngestSummary{Received: len(rows)}
	for _, row := range rows {
		rowLogger := s.logger.WithFields(logging.Fields{"feed": FeedScores, "external_id": row.ExternalID})

		update, game, err := s.prepareRow(ctx, row)
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
		summary.Matched++

		if update.IsEmpty() {
			continue
		}

		updated, err := s.schedule.UpsertResult(ctx, game.GameID, update)
		if err != nil {
			rowLogger.Errorf("Result update failed for game %d: %v", game.GameID, err)
			summary.fail(err)
			continue
		}
		summary.Updated++

		if !updated.IsFinal() {
			continue
		}
		if err := s.grade(ctx, updated); err != nil {
			rowLogger.Errorf("Grading failed for game %d: %v", game.GameID, err)
			summary.fail(err)
			continue
		}
		summary.Graded++
	}

	s.logger.Infof("Ingested %d score rows: matched=%d updated=%d graded=%d skipped=%d failed=%d",
		summary.Received, summary.Matched, summary.Updated, summary.Graded, summary.Skipped, summary.Failed)
	return summary
}

// prepareRow validates a row, matches it to a game and builds the update
func (s *ResultService) prepareRow(ctx context.Context, row ScoreRow) (models.ResultUpdate, *models.Game, error) {
	var update models.ResultUpdate

	if err := s.validate.StructCtx(ctx, row); err != nil {
		return update, nil, &ExternalDataError{Feed: FeedScores, ExternalID: row.ExternalID, Reason: err.Error()}
	}

	game, err := s.matcher.Match(ctx, FeedScores, row.ExternalID, row.HomeTeam, row.AwayTeam, row.CommenceTime)
	if err != nil {
		return update, nil, err
	}

	for _, score := range row.Scores {
		value, err := strconv.Atoi(score.Score)
		if err != nil {
			return update, nil, &ExternalDataError{Feed: FeedScores, ExternalID: row.ExternalID,
				Reason: fmt.Sprintf("unparseable score %q for %s", score.Score, score.Name)}
		}
		switch score.Name {
		case game.HomeTeam:
			update.HomeScore = models.IntPtr(value)
		case game.AwayTeam:
			update.AwayScore = models.IntPtr(value)
		default:
			return update, nil, &ExternalDataError{Feed: FeedScores, ExternalID: row.ExternalID,
				Reason: fmt.Sprintf("score for %s who is not in game %d", score.Name, game.GameID)}
		}
	}

	if row.Completed {
		if update.HomeScore == nil || update.AwayScore == nil {
			return update, nil, &ExternalDataError{Feed: FeedScores, ExternalID: row.ExternalID,
				Reason: "completed game is missing a score"}
		}
		update.Completed = true
	}

	if commence, err := models.ParseKickoff(row.CommenceTime); err == nil && !commence.Equal(game.Kickoff) {
		update.Kickoff = &commence
	}

	return update, game, nil
}

// RecomputeCorrectness grades every pick on a completed game. A tie leaves
// all picks ungraded. Calling it again yields the same state.
func (s *ResultService) RecomputeCorrectness(ctx context.Context, gameID int) error {
	game, err := s.schedule.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if !game.IsFinal() {
		return nil
	}
	return s.grade(ctx, game)
}

func (s *ResultService) grade(ctx context.Context, game *models.Game) error {
	winner := game.Winner()

	graded, err := s.picks.SetCorrectByGame(ctx, game.GameID, winner)
	if err != nil {
		return &PersistenceError{Op: "grade picks", Err: err}
	}
	s.cache.Invalidate(ctx)

	if winner == "" {
		s.logger.Infof("Game %d (%s) ended in a tie, %d picks left ungraded", game.GameID, game.Matchup(), graded)
	} else {
		s.logger.Infof("Game %d (%s) won by %s, graded %d picks", game.GameID, game.Matchup(), winner, graded)
	}
	return nil
}
