package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"pickem-app/interfaces"
	"pickem-app/models"
)

// MaxDisplayNameLength bounds user-chosen display names
const MaxDisplayNameLength = 40

// UserService covers profile reads and the display-name override
type UserService struct {
	users   interfaces.UserRepository
	picks   interfaces.PickRepository
	scoring *ScoringService
}

func NewUserService(users interfaces.UserRepository, picks interfaces.PickRepository, scoring *ScoringService) *UserService {
	return &UserService{
		users:   users,
		picks:   picks,
		scoring: scoring,
	}
}

// GetUser returns a user by id
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError("find user", "user", userID, err)
	}
	return user, nil
}

// Profile returns the public view of a user: picks and score
func (s *UserService) Profile(ctx context.Context, username string) (*models.Profile, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, storeError("find user", "user", username, err)
	}

	picks, err := s.picks.FindByUser(ctx, user.UserID)
	if err != nil {
		return nil, &PersistenceError{Op: "find user picks", Err: err}
	}
	score, err := s.scoring.Score(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	if picks == nil {
		picks = []*models.Pick{}
	}
	return &models.Profile{User: *user, Score: score, Picks: picks}, nil
}

// SetDisplayName sets or clears (empty name) the user's display name
func (s *UserService) SetDisplayName(ctx context.Context, userID, displayName string) (*models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) > MaxDisplayNameLength {
		return nil, newValidationError(RuleInvalidInput, "display name is longer than %d characters", MaxDisplayNameLength)
	}

	user, err := s.users.SetDisplayName(ctx, userID, displayName)
	if err != nil {
		return nil, storeError("set display name", "user", userID, err)
	}
	s.scoring.InvalidateLeaderboard(ctx)
	return user, nil
}
