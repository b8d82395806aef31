package domain

import (
	"math"
	"time"
)

// SeasonDaysToRace is the days-to-race value for plans without a race.
// It matches every structure's range.
const SeasonDaysToRace = math.MaxInt32

// MondayOf returns midnight UTC of the Monday starting t's ISO week.
func MondayOf(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// PlanAnchor returns the Monday of the plan's first week. Race plans walk
// back from the race date by the plan length; other plans start the week
// containing now.
func PlanAnchor(c PlanContext, now time.Time) time.Time {
	if c.IsRace() && c.TargetDate != nil {
		return MondayOf(c.TargetDate.AddDate(0, 0, -7*c.Weeks))
	}
	return MondayOf(now)
}

// SessionDate returns the calendar date of a day in a plan week (1-based).
func SessionDate(anchor time.Time, week, dayIndex int) time.Time {
	return anchor.AddDate(0, 0, (week-1)*7+dayIndex)
}

// DaysToRace returns the days between a week's start and the race, or
// SeasonDaysToRace for plans without a race.
func DaysToRace(c PlanContext, anchor time.Time, week int) int {
	if !c.IsRace() || c.TargetDate == nil {
		return SeasonDaysToRace
	}
	race := time.Date(c.TargetDate.Year(), c.TargetDate.Month(), c.TargetDate.Day(), 0, 0, 0, 0, time.UTC)
	start := SessionDate(anchor, week, 0)
	return int(race.Sub(start).Hours() / 24)
}
