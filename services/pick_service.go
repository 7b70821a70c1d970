package services

import (
	"context"
	"errors"
	"math"
	"time"

	"pickem-app/interfaces"
	"pickem-app/logging"
	"pickem-app/models"
)

// PickService enforces the pick rules: one pick per game, a season-long
// single lock per team, weekly allowances, and the kickoff cutoff.
type PickService struct {
	picks    interfaces.PickRepository
	schedule *ScheduleService
	spreads  *SpreadService
	cache    LeaderboardCache
	userLock *keyedMutex
	now      func() time.Time
	logger   *logging.Logger
}

// NewPickService creates a new pick service. spreads may be nil when upset
// picks are only submitted with explicit points; cache may be nil.
func NewPickService(picks interfaces.PickRepository, schedule *ScheduleService, spreads *SpreadService, cache LeaderboardCache) *PickService {
	return &PickService{
		picks:    picks,
		schedule: schedule,
		spreads:  spreads,
		cache:    cacheOrNoop(cache),
		userLock: newKeyedMutex(),
		now:      time.Now,
		logger:   logging.WithPrefix("picks"),
	}
}

// SetClock replaces the time source used for the kickoff cutoff
func (s *PickService) SetClock(now func() time.Time) {
	s.now = now
}

// SubmitPick records a pick, replacing any existing pick the user holds on
// the same game. Lock picks are always worth LockPoints.
func (s *PickService) SubmitPick(ctx context.Context, userID string, gameID int, team string, kind models.PickKind, points float64) (*models.Pick, error) {
	// Kickoff is checked under the user's lock; a queued submission must not
	// land after it
	unlock := s.userLock.Lock(userID)
	defer unlock()

	game, err := s.openGame(ctx, gameID, team)
	if err != nil {
		return nil, err
	}

	switch kind {
	case models.PickKindLock:
		points = models.LockPoints
	case models.PickKindUpset:
		if points <= 0 || math.IsNaN(points) || math.IsInf(points, 0) {
			return nil, newValidationError(RuleInvalidPoints, "upset picks need a positive point value, got %v", points)
		}
	default:
		return nil, newValidationError(RuleInvalidKind, "unknown pick kind %q", kind)
	}

	existing, err := s.picks.FindByUser(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "find user picks", Err: err}
	}

	if kind == models.PickKindLock {
		for _, p := range existing {
			if p.IsLock() && p.Team == team && p.GameID != gameID {
				return nil, newValidationError(RuleDuplicateLock,
					"%s already used as a lock pick in game %d", team, p.GameID)
			}
		}
	}

	if err := s.checkWeeklyQuota(ctx, existing, game, kind); err != nil {
		return nil, err
	}

	pick := &models.Pick{
		UserID:    userID,
		GameID:    gameID,
		Team:      team,
		Kind:      kind,
		Points:    points,
		CreatedAt: s.now().UTC(),
	}
	if err := s.picks.Replace(ctx, pick); err != nil {
		return nil, &PersistenceError{Op: "save pick", Err: err}
	}
	s.cache.Invalidate(ctx)

	s.logger.Infof("User %s picked %s (%s, %.1f pts) in game %d", userID, team, kind, points, gameID)
	return pick, nil
}

// SubmitUpsetPick submits an upset worth the team's current spread. The team
// must be the underdog in the latest odds.
func (s *PickService) SubmitUpsetPick(ctx context.Context, userID string, gameID int, team string) (*models.Pick, error) {
	if _, err := s.openGame(ctx, gameID, team); err != nil {
		return nil, err
	}
	if s.spreads == nil {
		return nil, newValidationError(RuleNotUnderdog, "no spreads available for game %d", gameID)
	}

	spread, err := s.spreads.CurrentSpread(ctx, gameID, team)
	if errors.Is(err, ErrNotFound) {
		return nil, newValidationError(RuleNotUnderdog, "no spread recorded for %s in game %d", team, gameID)
	}
	if err != nil {
		return nil, err
	}
	if !spread.IsUnderdog() {
		return nil, newValidationError(RuleNotUnderdog, "%s is favored by %.1f", team, spread.Magnitude())
	}

	return s.SubmitPick(ctx, userID, gameID, team, models.PickKindUpset, spread.Magnitude())
}

// RemovePick deletes the user's pick on a game before kickoff. Removing a
// pick that does not exist is not an error.
func (s *PickService) RemovePick(ctx context.Context, userID string, gameID int) error {
	unlock := s.userLock.Lock(userID)
	defer unlock()

	game, err := s.schedule.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if game.HasStarted(s.now()) {
		return newValidationError(RulePickWindowClosed, "game %d kicked off at %s", gameID, game.Kickoff.Format(time.RFC3339))
	}

	removed, err := s.picks.DeleteByUserAndGame(ctx, userID, gameID)
	if err != nil {
		return &PersistenceError{Op: "remove pick", Err: err}
	}
	if removed > 0 {
		s.cache.Invalidate(ctx)
		s.logger.Infof("User %s removed pick for game %d", userID, gameID)
	}
	return nil
}

// UserPicks returns every pick the user holds
func (s *PickService) UserPicks(ctx context.Context, userID string) ([]*models.Pick, error) {
	picks, err := s.picks.FindByUser(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "find user picks", Err: err}
	}
	return picks, nil
}

// UserPicksForWeek returns the user's picks on games of the given week
func (s *PickService) UserPicksForWeek(ctx context.Context, userID string, week int) ([]*models.Pick, error) {
	picks, err := s.UserPicks(ctx, userID)
	if err != nil {
		return nil, err
	}
	games, err := s.schedule.gameIndex(ctx)
	if err != nil {
		return nil, err
	}

	var weekPicks []*models.Pick
	for _, p := range picks {
		if game, ok := games[p.GameID]; ok && game.Week() == week {
			weekPicks = append(weekPicks, p)
		}
	}
	return weekPicks, nil
}

// LockedTeams returns the teams the user has already used as lock picks
func (s *PickService) LockedTeams(ctx context.Context, userID string) (map[string]struct{}, error) {
	picks, err := s.UserPicks(ctx, userID)
	if err != nil {
		return nil, err
	}

	teams := make(map[string]struct{})
	for _, p := range picks {
		if p.IsLock() {
			teams[p.Team] = struct{}{}
		}
	}
	return teams, nil
}

// openGame loads a game that still accepts picks for team
func (s *PickService) openGame(ctx context.Context, gameID int, team string) (*models.Game, error) {
	game, err := s.schedule.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.HasStarted(s.now()) {
		return nil, newValidationError(RulePickWindowClosed, "game %d kicked off at %s", gameID, game.Kickoff.Format(time.RFC3339))
	}
	if !game.HasTeam(team) {
		return nil, newValidationError(RuleInvalidTeam, "%q does not play in %s", team, game.Matchup())
	}
	return game, nil
}

// checkWeeklyQuota counts same-kind picks in the game's week, ignoring the
// pick on this game that a submission would replace
func (s *PickService) checkWeeklyQuota(ctx context.Context, existing []*models.Pick, game *models.Game, kind models.PickKind) error {
	week := game.Week()
	var games map[int]*models.Game

	count := 0
	for _, p := range existing {
		if p.Kind != kind || p.GameID == game.GameID {
			continue
		}
		if games == nil {
			var err error
			if games, err = s.schedule.gameIndex(ctx); err != nil {
				return err
			}
		}
		if other, ok := games[p.GameID]; ok && other.Week() == week {
			count++
		}
	}

	if count+1 > kind.WeeklyLimit() {
		return newValidationError(RuleWeeklyQuotaExceeded,
			"week %d already has %d %s pick(s), limit is %d", week, count, kind, kind.WeeklyLimit())
	}
	return nil
}
