package services

import (
	"context"
	"sort"

	"pickem-app/interfaces"
	"pickem-app/logging"
	"pickem-app/models"
)

// ScoringService computes scores from graded picks. Nothing here is stored;
// every call reflects the current pick state unless served from cache.
type ScoringService struct {
	picks    interfaces.PickRepository
	users    interfaces.UserRepository
	schedule *ScheduleService
	cache    LeaderboardCache
	logger   *logging.Logger
}

// NewScoringService creates a scoring service. cache may be nil.
func NewScoringService(picks interfaces.PickRepository, users interfaces.UserRepository, schedule *ScheduleService, cache LeaderboardCache) *ScoringService {
	return &ScoringService{
		picks:    picks,
		users:    users,
		schedule: schedule,
		cache:    cacheOrNoop(cache),
		logger:   logging.WithPrefix("scoring"),
	}
}

// Score sums the points of the user's correct picks on completed games
func (s *ScoringService) Score(ctx context.Context, userID string) (float64, error) {
	picks, err := s.picks.FindByUser(ctx, userID)
	if err != nil {
		return 0, &PersistenceError{Op: "find user picks", Err: err}
	}
	games, err := s.schedule.gameIndex(ctx)
	if err != nil {
		return 0, err
	}

	var score float64
	for _, p := range picks {
		if counts(p, games) {
			score += p.Points
		}
	}
	return score, nil
}

// Leaderboard ranks every known user, plus any user id that owns picks, by
// score descending with ties broken by user id
func (s *ScoringService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries, generation, ok := s.cache.Get(ctx)
	if ok {
		return entries, nil
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	picks, err := s.picks.FindAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list picks", Err: err}
	}
	games, err := s.schedule.gameIndex(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*models.LeaderboardEntry, len(users))
	for _, u := range users {
		byUser[u.UserID] = &models.LeaderboardEntry{
			UserID:      u.UserID,
			DisplayName: u.PublicName(),
			Winners:     []models.CorrectPick{},
		}
	}

	for _, p := range picks {
		entry, ok := byUser[p.UserID]
		if !ok {
			entry = &models.LeaderboardEntry{UserID: p.UserID, DisplayName: p.UserID, Winners: []models.CorrectPick{}}
			byUser[p.UserID] = entry
		}
		entry.TotalPicks++

		game, ok := games[p.GameID]
		if !ok || !game.IsFinal() || !p.IsGraded() {
			continue
		}
		entry.GradedPicks++
		if !p.IsCorrect() {
			continue
		}
		entry.CorrectPicks++
		entry.Score += p.Points
		entry.Winners = append(entry.Winners, models.CorrectPick{
			Week:    game.Week(),
			GameID:  game.GameID,
			Matchup: game.Matchup(),
			Team:    p.Team,
			Kind:    p.Kind,
			Points:  p.Points,
		})
	}

	entries = make([]models.LeaderboardEntry, 0, len(byUser))
	for _, entry := range byUser {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}

	s.cache.Set(ctx, generation, entries)
	s.logger.Debugf("Computed leaderboard for %d users from %d picks", len(entries), len(picks))
	return entries, nil
}

// InvalidateLeaderboard drops any cached leaderboard
func (s *ScoringService) InvalidateLeaderboard(ctx context.Context) {
	s.cache.Invalidate(ctx)
}

// counts reports whether a pick contributes points
func counts(p *models.Pick, games map[int]*models.Game) bool {
	if !p.IsCorrect() {
		return false
	}
	game, ok := games[p.GameID]
	return ok && game.IsFinal()
}
