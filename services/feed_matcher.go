package services

import (
	"context"
	"fmt"

	"pickem-app/interfaces"
	"pickem-app/models"
)

// feedMatcher resolves external feed rows to schedule games by home team,
// away team and Eastern calendar date. External ids are never trusted.
type feedMatcher struct {
	games interfaces.GameRepository
}

func newFeedMatcher(games interfaces.GameRepository) *feedMatcher {
	return &feedMatcher{games: games}
}

// Match returns the single schedule game for a feed row
func (m *feedMatcher) Match(ctx context.Context, feed, externalID, homeTeam, awayTeam, commenceTime string) (*models.Game, error) {
	commence, err := models.ParseKickoff(commenceTime)
	if err != nil {
		return nil, &ExternalDataError{Feed: feed, ExternalID: externalID, Reason: err.Error()}
	}
	date := models.GameDate(commence)

	candidates, err := m.games.FindByMatchup(ctx, homeTeam, awayTeam)
	if err != nil {
		return nil, &PersistenceError{Op: "match feed row", Err: err}
	}

	var matched []*models.Game
	for _, game := range candidates {
		if game.Date() == date {
			matched = append(matched, game)
		}
	}

	switch len(matched) {
	case 0:
		return nil, &ExternalDataError{
			Feed:       feed,
			ExternalID: externalID,
			Reason:     fmt.Sprintf("no game %s @ %s on %s", awayTeam, homeTeam, date),
		}
	case 1:
		return matched[0], nil
	default:
		return nil, &ExternalDataError{
			Feed:       feed,
			ExternalID: externalID,
			Reason:     fmt.Sprintf("%d games %s @ %s on %s", len(matched), awayTeam, homeTeam, date),
		}
	}
}
