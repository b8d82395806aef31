package domain

import "time"

// MacroWeek is one week's focus and volume target before any daily breakdown.
type MacroWeek struct {
	Week          int
	Focus         Focus
	TotalDistance float64
}

// DistributedDay is a structural day with its allocated volume.
type DistributedDay struct {
	DayIndex int
	DayType  DayType
	Distance float64
}

type SessionStep struct {
	Segment     Segment
	Description string
	DistanceMi  float64
	DurationMin float64
	Intensity   string
}

type SessionMetrics struct {
	TotalDistanceMi  float64
	DurationMin      float64
	HardMinutes      float64
	IntensityMinutes map[string]float64
}

// SessionTextOutput is the human-readable and structured detail of one session.
type SessionTextOutput struct {
	Title       string
	Description string
	Structure   []SessionStep
	Metrics     SessionMetrics
	Source      TextSource
}

// PlannedSession is one calendar session. Template is set by template
// selection, Text by session text generation.
type PlannedSession struct {
	DayIndex    int
	DayType     DayType
	SessionType string
	Distance    float64
	Order       int
	Template    *SessionTemplate
	Text        *SessionTextOutput
}

// IsRest reports whether the session is a rest day.
func (s PlannedSession) IsRest() bool {
	return s.DayType == DayRest
}

// WithText returns a copy of the session carrying the generated text.
func (s PlannedSession) WithText(out SessionTextOutput) PlannedSession {
	text := out
	s.Text = &text
	return s
}

// PlannedWeek is one week's complete session set.
type PlannedWeek struct {
	Week        int
	Focus       Focus
	StructureID string
	Sessions    []PlannedSession
}

// SessionCount returns the number of sessions in the week.
func (w PlannedWeek) SessionCount() int {
	return len(w.Sessions)
}

// PersistResult is the outcome of writing a plan into the calendar.
type PersistResult struct {
	PlanID     string
	Created    int
	Updated    int
	Skipped    int
	Warnings   []string
	Success    bool
	SessionIDs []string
}

// Persisted returns the number of sessions written.
func (r PersistResult) Persisted() int {
	return r.Created + r.Updated
}

// CalendarSession is a persisted calendar row.
type CalendarSession struct {
	ID            string
	UserID        string
	AthleteID     string
	PlanID        string
	Date          time.Time
	Order         int
	WeekNumber    int
	DayIndex      int
	Phase         Focus
	Title         string
	Notes         string
	DistanceMi    float64
	DurationMin   float64
	Intensity     string
	Tags          []string
	TemplateID    string
	SessionType   string
	StructureJSON string
	Source        TextSource
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
