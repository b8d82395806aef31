package domain

import (
	"fmt"
	"sort"
)

// Philosophy is a named training methodology. Its ID is the namespace
// every structure and template lookup is scoped to once it is locked.
type Philosophy struct {
	ID            string
	Domain        TrainingDomain
	Version       string
	Priority      int
	RaceDistances []string
	Audiences     []Audience
	Requires      []string
	Prohibits     []string
	Description   string
}

// SupportsDistance reports whether the philosophy lists the distance.
func (p Philosophy) SupportsDistance(d string) bool {
	return containsDistance(p.RaceDistances, d)
}

// SupportsAudience reports whether the philosophy accepts the tier, either
// explicitly or by declaring itself audience-agnostic.
func (p Philosophy) SupportsAudience(a Audience) bool {
	return containsAudience(p.Audiences, a)
}

// ConstraintViolation returns the first requires/prohibits rule the flag
// set breaks, or "" if none.
func (p Philosophy) ConstraintViolation(has func(string) bool) string {
	for _, r := range p.Requires {
		if !has(r) {
			return "requires " + r
		}
	}
	for _, r := range p.Prohibits {
		if has(r) {
			return "prohibits " + r
		}
	}
	return ""
}

// DayRange bounds the days-to-race window a structure applies to.
// A nil Max leaves the range open above, so the zero value matches any
// day count and {Min: 0, Max: 0} matches race week only.
type DayRange struct {
	Min int
	Max *int
}

// DaysBetween returns the closed range [minDays, maxDays].
func DaysBetween(minDays, maxDays int) DayRange {
	return DayRange{Min: minDays, Max: &maxDays}
}

// DaysAtLeast returns the range [minDays, ∞).
func DaysAtLeast(minDays int) DayRange {
	return DayRange{Min: minDays}
}

// Contains reports whether days falls inside the range.
func (r DayRange) Contains(days int) bool {
	if days < r.Min {
		return false
	}
	return r.Max == nil || days <= *r.Max
}

// Unbounded reports whether the range matches any day count.
func (r DayRange) Unbounded() bool {
	return r.Min == 0 && r.Max == nil
}

func (r DayRange) String() string {
	if r.Max == nil {
		return fmt.Sprintf("%d+", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, *r.Max)
}

// LongGroup names the session group holding a structure's single long
// day.
const LongGroup = "long"

// StructureDay is one slot of a 7-day skeleton.
type StructureDay struct {
	Day  int // 0 = Monday
	Type DayType
}

type StructureRules struct {
	HardDaysMax       int
	NoConsecutiveHard bool
	LongRunsRequired  int
}

// WeekStructure is a 7-day skeleton of day types plus the rules and
// allocation groups that apply to it.
type WeekStructure struct {
	ID            string
	PhilosophyID  string
	Phase         Focus
	RaceDistances []string
	Audiences     []Audience
	DaysToRace    DayRange
	Priority      int
	Days          []StructureDay
	Rules         StructureRules
	SessionGroups map[string][]DayType
	SessionTypes  map[int]string
	Guards        []string
	Description   string
}

// SupportsDistance reports whether the structure lists the distance.
// A structure without distances applies to all of them.
func (s WeekStructure) SupportsDistance(d string) bool {
	if len(s.RaceDistances) == 0 {
		return true
	}
	return containsDistance(s.RaceDistances, d)
}

// SupportsAudience mirrors Philosophy.SupportsAudience.
func (s WeekStructure) SupportsAudience(a Audience) bool {
	return containsAudience(s.Audiences, a)
}

// GroupOf returns the session group whose members include t. Groups are
// scanned in name order, so a type listed twice resolves the same way
// every call.
func (s WeekStructure) GroupOf(t DayType) (string, bool) {
	names := make([]string, 0, len(s.SessionGroups))
	for name := range s.SessionGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, m := range s.SessionGroups[name] {
			if m == t {
				return name, true
			}
		}
	}
	return "", false
}

// CountType counts days of the given type.
func (s WeekStructure) CountType(t DayType) int {
	n := 0
	for _, d := range s.Days {
		if d.Type == t {
			n++
		}
	}
	return n
}

// HardDays counts days that count against the hard-day cap.
func (s WeekStructure) HardDays() int {
	n := 0
	for _, d := range s.Days {
		if d.Type.IsHard() {
			n++
		}
	}
	return n
}

type TemplateConstraints struct {
	MaxHardMinutes      float64
	MaxIntensityMinutes map[string]float64
}

// SessionTemplate is a parameterized workout pattern. An empty
// PhilosophyID marks a template shared across namespaces.
type SessionTemplate struct {
	ID             string
	PhilosophyID   string
	DescriptionKey string
	Kind           TemplateKind
	SessionTypes   []string
	Params         map[string]float64
	Constraints    TemplateConstraints
	Tags           []string
	Description    string
}

// Param returns a numeric parameter or the fallback when absent.
func (t SessionTemplate) Param(name string, fallback float64) float64 {
	if v, ok := t.Params[name]; ok {
		return v
	}
	return fallback
}

func containsDistance(list []string, d string) bool {
	want := NormalizeDistance(d)
	for _, v := range list {
		if NormalizeDistance(v) == want {
			return true
		}
	}
	return false
}

func containsAudience(list []Audience, a Audience) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == a || v == AudienceAll {
			return true
		}
	}
	return false
}
