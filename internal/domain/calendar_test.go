package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMondayOf(t *testing.T) {
	assert.Equal(t, date(2026, 10, 12), MondayOf(date(2026, 10, 12)), "monday")
	assert.Equal(t, date(2026, 10, 12), MondayOf(date(2026, 10, 15)), "thursday")
	assert.Equal(t, date(2026, 10, 12), MondayOf(time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)), "sunday night")
}

func TestPlanAnchor_Race(t *testing.T) {
	race := date(2027, 4, 18) // Sunday
	c := PlanContext{Kind: PlanRace, Weeks: 16, RaceDistance: DistanceMarathon, TargetDate: &race}

	anchor := PlanAnchor(c, date(2026, 10, 15))

	// 2027-04-18 minus 112 days is 2026-12-27 (a Sunday); its Monday is 12-21.
	assert.Equal(t, date(2026, 12, 21), anchor)
	assert.Equal(t, time.Monday, anchor.Weekday())
	assert.Equal(t, date(2027, 4, 18), SessionDate(anchor, 17, 6))
}

func TestPlanAnchor_SeasonUsesCurrentWeek(t *testing.T) {
	c := PlanContext{Kind: PlanSeason, Weeks: 8}
	assert.Equal(t, date(2026, 10, 12), PlanAnchor(c, date(2026, 10, 15)))
}

func TestDaysToRace(t *testing.T) {
	race := date(2027, 4, 18)
	c := PlanContext{Kind: PlanRace, Weeks: 16, RaceDistance: DistanceMarathon, TargetDate: &race}
	anchor := PlanAnchor(c, time.Now())

	assert.Equal(t, 118, DaysToRace(c, anchor, 1))
	assert.Equal(t, 13, DaysToRace(c, anchor, 16))

	season := PlanContext{Kind: PlanSeason, Weeks: 4}
	assert.Equal(t, SeasonDaysToRace, DaysToRace(season, anchor, 1))
}
