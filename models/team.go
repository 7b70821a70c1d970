package models

// Team represents an NFL team
type Team struct {
	Name string `json:"name"`
	City string `json:"city"`
	Abbr string `json:"abbr"`
}

// FullName returns the canonical name used by the schedule and the feeds
func (t Team) FullName() string {
	return t.City + " " + t.Name
}

// Teams is the league's team set keyed by canonical full name
var Teams = buildTeams([]Team{
	{"Cardinals", "Arizona", "ARI"},
	{"Falcons", "Atlanta", "ATL"},
	{"Ravens", "Baltimore", "BAL"},
	{"Bills", "Buffalo", "BUF"},
	{"Panthers", "Carolina", "CAR"},
	{"Bears", "Chicago", "CHI"},
	{"Bengals", "Cincinnati", "CIN"},
	{"Browns", "Cleveland", "CLE"},
	{"Cowboys", "Dallas", "DAL"},
	{"Broncos", "Denver", "DEN"},
	{"Lions", "Detroit", "DET"},
	{"Packers", "Green Bay", "GB"},
	{"Texans", "Houston", "HOU"},
	{"Colts", "Indianapolis", "IND"},
	{"Jaguars", "Jacksonville", "JAX"},
	{"Chiefs", "Kansas City", "KC"},
	{"Raiders", "Las Vegas", "LV"},
	{"Chargers", "Los Angeles", "LAC"},
	{"Rams", "Los Angeles", "LAR"},
	{"Dolphins", "Miami", "MIA"},
	{"Vikings", "Minnesota", "MIN"},
	{"Patriots", "New England", "NE"},
	{"Saints", "New Orleans", "NO"},
	{"Giants", "New York", "NYG"},
	{"Jets", "New York", "NYJ"},
	{"Eagles", "Philadelphia", "PHI"},
	{"Steelers", "Pittsburgh", "PIT"},
	{"49ers", "San Francisco", "SF"},
	{"Seahawks", "Seattle", "SEA"},
	{"Buccaneers", "Tampa Bay", "TB"},
	{"Titans", "Tennessee", "TEN"},
	{"Commanders", "Washington", "WAS"},
})

func buildTeams(teams []Team) map[string]Team {
	byName := make(map[string]Team, len(teams))
	for _, team := range teams {
		byName[team.FullName()] = team
	}
	return byName
}

// IsKnownTeam reports whether name is a canonical full team name
func IsKnownTeam(name string) bool {
	_, ok := Teams[name]
	return ok
}

// TeamAbbr returns the abbreviation for a canonical team name, or the name itself
func TeamAbbr(name string) string {
	if team, ok := Teams[name]; ok {
		return team.Abbr
	}
	return name
}
