package models

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // week boundaries must not depend on the host's zoneinfo
)

// RegularSeasonWeeks is the highest week number a game can resolve to
const RegularSeasonWeeks = 18

// LeagueLocation is the league's home timezone; week boundaries and
// feed-matching dates are computed in it.
var LeagueLocation = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// SeasonYear returns the season a kickoff belongs to. January and February
// games are playoff games of the previous year's season.
func SeasonYear(kickoff time.Time) int {
	local := kickoff.In(LeagueLocation)
	if local.Month() <= time.February {
		return local.Year() - 1
	}
	return local.Year()
}

// SeasonStart returns midnight Eastern on the first Thursday on or after
// September 1 of the given season year.
func SeasonStart(seasonYear int) time.Time {
	start := time.Date(seasonYear, time.September, 1, 0, 0, 0, 0, LeagueLocation)
	offset := (int(time.Thursday) - int(start.Weekday()) + 7) % 7
	return start.AddDate(0, 0, offset)
}

// WeekOf maps a kickoff to its season week in [1, RegularSeasonWeeks].
// Kickoffs before the season start, and playoff games past the last
// regular-season week, resolve to the final week.
func WeekOf(kickoff time.Time) int {
	local := kickoff.In(LeagueLocation)
	start := SeasonStart(SeasonYear(local))

	// Calendar-day difference so DST transitions don't shift a boundary
	days := daysBetween(start, local)
	week := floorDiv(days, 7) + 1
	if week <= 0 || week > RegularSeasonWeeks {
		return RegularSeasonWeeks
	}
	return week
}

// GameDate returns the kickoff's calendar date in the league timezone,
// formatted YYYY-MM-DD. Feeds are matched to schedule games on this value.
func GameDate(kickoff time.Time) string {
	return kickoff.In(LeagueLocation).Format("2006-01-02")
}

// ParseKickoff parses RFC3339 timestamps and timezone-naive ISO-8601
// timestamps. Naive timestamps are read as UTC.
func ParseKickoff(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}

	naiveLayouts := []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized kickoff timestamp %q", value)
}

func daysBetween(from, to time.Time) int {
	fromDate := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDate := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDate.Sub(fromDate).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
