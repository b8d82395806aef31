// Package volume distributes a week's target distance across the days of
// a week structure.
package volume

import (
	"sort"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
)

// LongGroup is the session group that absorbs rounding drift.
const LongGroup = domain.LongGroup

// Ratios maps a session group to its share of weekly volume. Ratios are
// normalized over the groups a structure actually uses.
type Ratios map[string]float64

// DefaultRatios returns the standard long/hard/easy split. Rest days take
// no volume.
func DefaultRatios() Ratios {
	return Ratios{
		"long": 0.30,
		"hard": 0.25,
		"easy": 0.45,
		"rest": 0,
	}
}

// Allocate splits target across the structure's days by session-group
// ratio. Each day is rounded to 0.1 and the rounding drift is added to
// the single long-group day, so the returned distances always sum to
// target rounded to 0.1. Days are returned in day-index order.
func Allocate(target float64, s domain.WeekStructure, ratios Ratios) ([]domain.DistributedDay, error) {
	if target <= 0 {
		return nil, app.Errorf(app.ErrAllocation, "weekly target must be > 0, got %g", target)
	}
	if len(s.Days) == 0 {
		return nil, app.Errorf(app.ErrAllocation, "structure %s has no days", s.ID)
	}

	// 1. Map each day to its session group.
	groupOf := make([]string, len(s.Days))
	members := make(map[string]int)
	for i, d := range s.Days {
		g, ok := s.GroupOf(d.Type)
		if !ok {
			return nil, app.Errorf(app.ErrAllocation, "structure %s: day %d type %q maps to no session group", s.ID, d.Day, d.Type)
		}
		groupOf[i] = g
		members[g]++
	}

	// 2. Look up ratios for the groups in use. Groups are summed in name
	// order so the float result does not depend on map iteration.
	groups := make([]string, 0, len(members))
	for g := range members {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	var ratioSum float64
	for _, g := range groups {
		r, ok := ratios[g]
		if !ok {
			return nil, app.Errorf(app.ErrAllocation, "structure %s: no ratio for session group %q", s.ID, g)
		}
		if r < 0 {
			return nil, app.Errorf(app.ErrAllocation, "session group %q has negative ratio %g", g, r)
		}
		ratioSum += r
	}
	if ratioSum <= 0 {
		return nil, app.Errorf(app.ErrAllocation, "structure %s: ratios of used groups sum to zero", s.ID)
	}

	longIdx := -1
	for i, g := range groupOf {
		if g != LongGroup {
			continue
		}
		if longIdx != -1 {
			return nil, app.Errorf(app.ErrAllocation, "structure %s: more than one long-group day", s.ID)
		}
		longIdx = i
	}
	if longIdx == -1 {
		return nil, app.Errorf(app.ErrAllocation, "structure %s: no long-group day to absorb rounding drift", s.ID)
	}

	// 3-5. Normalized group share, split evenly, rounded to tenths.
	tenths := make([]int64, len(s.Days))
	var sum int64
	for i, g := range groupOf {
		share := target * ratios[g] / ratioSum
		tenths[i] = domain.Tenths(share / float64(members[g]))
		sum += tenths[i]
	}

	// 6. All drift goes to the long day.
	want := domain.Tenths(target)
	tenths[longIdx] += want - sum
	if tenths[longIdx] < 0 {
		return nil, app.Errorf(app.ErrAllocation, "structure %s: drift correction made the long day negative", s.ID)
	}

	// 7. Conservation.
	var check int64
	days := make([]domain.DistributedDay, len(s.Days))
	for i, d := range s.Days {
		check += tenths[i]
		days[i] = domain.DistributedDay{
			DayIndex: d.Day,
			DayType:  d.Type,
			Distance: domain.FromTenths(tenths[i]),
		}
	}
	if check != want {
		return nil, app.Errorf(app.ErrAllocation, "conservation check failed: allocated %d tenths, want %d", check, want)
	}

	sort.SliceStable(days, func(i, j int) bool { return days[i].DayIndex < days[j].DayIndex })
	return days, nil
}

// Total sums day distances in tenths, avoiding float accumulation error.
func Total(days []domain.DistributedDay) float64 {
	var t int64
	for _, d := range days {
		t += domain.Tenths(d.Distance)
	}
	return domain.FromTenths(t)
}
