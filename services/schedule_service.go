package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"pickem-app/interfaces"
	"pickem-app/logging"
	"pickem-app/models"
)

// ScheduleRow is one game of the seed dataset
type ScheduleRow struct {
	GameID   int    `json:"game_id" validate:"required,gt=0"`
	Kickoff  string `json:"datetime" validate:"required"`
	HomeTeam string `json:"home_team" validate:"required"`
	AwayTeam string `json:"away_team" validate:"required,nefield=HomeTeam"`
}

// ScheduleService owns the game schedule and its result fields
type ScheduleService struct {
	games    interfaces.GameRepository
	validate *validator.Validate
	logger   *logging.Logger
}

// NewScheduleService creates a schedule service over the game repository
func NewScheduleService(games interfaces.GameRepository) *ScheduleService {
	return &ScheduleService{
		games:    games,
		validate: validator.New(),
		logger:   logging.WithPrefix("schedule"),
	}
}

// LoadInitial imports the seed schedule once. When any game already exists
// it does nothing and returns zero.
func (s *ScheduleService) LoadInitial(ctx context.Context, rows []ScheduleRow) (int, error) {
	count, err := s.games.Count(ctx)
	if err != nil {
		return 0, &PersistenceError{Op: "count games", Err: err}
	}
	if count > 0 {
		s.logger.Infof("Schedule already loaded (%d games), skipping seed", count)
		return 0, nil
	}

	seen := make(map[int]struct{}, len(rows))
	games := make([]*models.Game, 0, len(rows))
	for i, row := range rows {
		if err := s.validate.StructCtx(ctx, row); err != nil {
			return 0, newValidationError(RuleInvalidInput, "schedule row %d: %v", i, err)
		}
		if _, dup := seen[row.GameID]; dup {
			return 0, newValidationError(RuleInvalidInput, "schedule row %d: duplicate game_id %d", i, row.GameID)
		}
		seen[row.GameID] = struct{}{}

		kickoff, err := models.ParseKickoff(row.Kickoff)
		if err != nil {
			return 0, newValidationError(RuleInvalidInput, "schedule row %d: %v", i, err)
		}
		for _, team := range []string{row.HomeTeam, row.AwayTeam} {
			if !models.IsKnownTeam(team) {
				s.logger.Warnf("Game %d references unknown team %q", row.GameID, team)
			}
		}

		games = append(games, &models.Game{
			GameID:   row.GameID,
			Kickoff:  kickoff,
			HomeTeam: row.HomeTeam,
			AwayTeam: row.AwayTeam,
		})
	}

	if err := s.games.InsertMany(ctx, games); err != nil {
		return 0, &PersistenceError{Op: "insert schedule", Err: err}
	}

	s.logger.Infof("Loaded %d games into schedule", len(games))
	return len(games), nil
}

// Get returns one game by id
func (s *ScheduleService) Get(ctx context.Context, gameID int) (*models.Game, error) {
	game, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, storeError("find game", "game", strconv.Itoa(gameID), err)
	}
	return game, nil
}

// ListAll returns every game ordered by kickoff
func (s *ScheduleService) ListAll(ctx context.Context) ([]*models.Game, error) {
	games, err := s.games.FindAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list games", Err: err}
	}
	return games, nil
}

// ListByWeek returns the games whose kickoff falls in the given season week
func (s *ScheduleService) ListByWeek(ctx context.Context, week int) ([]*models.Game, error) {
	if week < 1 || week > models.RegularSeasonWeeks {
		return nil, newValidationError(RuleInvalidInput, "week must be between 1 and %d", models.RegularSeasonWeeks)
	}

	games, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var weekGames []*models.Game
	for _, game := range games {
		if game.Week() == week {
			weekGames = append(weekGames, game)
		}
	}
	return weekGames, nil
}

// UpsertResult merges reported result fields into a game. Only supplied
// fields are written and completion is never reverted.
func (s *ScheduleService) UpsertResult(ctx context.Context, gameID int, update models.ResultUpdate) (*models.Game, error) {
	if update.IsEmpty() {
		return s.Get(ctx, gameID)
	}

	game, err := s.games.UpsertResult(ctx, gameID, update)
	if err != nil {
		return nil, storeError("update result", "game", strconv.Itoa(gameID), err)
	}
	return game, nil
}

// gameIndex maps game id to game for pick and scoring lookups
func (s *ScheduleService) gameIndex(ctx context.Context) (map[int]*models.Game, error) {
	games, err := s.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("index games: %w", err)
	}
	index := make(map[int]*models.Game, len(games))
	for _, game := range games {
		index[game.GameID] = game
	}
	return index, nil
}
