package handlers

import (
	"sort"

	"pickem-app/models"
)

// sortedTeams flattens a team set into alphabetical order
func sortedTeams(teams map[string]struct{}) []string {
	out := make([]string, 0, len(teams))
	for team := range teams {
		out = append(out, team)
	}
	sort.Strings(out)
	return out
}

// nonNilPicks keeps empty lists encoding as [] rather than null
func nonNilPicks(picks []*models.Pick) []*models.Pick {
	if picks == nil {
		return []*models.Pick{}
	}
	return picks
}

func nonNilGames(games []*models.Game) []*models.Game {
	if games == nil {
		return []*models.Game{}
	}
	return games
}
