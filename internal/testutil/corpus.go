package testutil

import (
	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/domain"
)

// Standard session groups used by fixture structures.
func standardGroups() map[string][]domain.DayType {
	return map[string][]domain.DayType{
		"long": {domain.DayLong},
		"hard": {domain.DayHard, domain.DayRace},
		"easy": {domain.DayEasy, domain.DayRecovery, domain.DayModerate},
		"rest": {domain.DayRest},
	}
}

// WeekDays lays out seven day types Monday..Sunday.
func WeekDays(types ...domain.DayType) []domain.StructureDay {
	days := make([]domain.StructureDay, len(types))
	for i, t := range types {
		days[i] = domain.StructureDay{Day: i, Type: t}
	}
	return days
}

// StructureOption customizes a fixture structure.
type StructureOption func(*domain.WeekStructure)

func WithDaysToRace(minDays, maxDays int) StructureOption {
	return func(s *domain.WeekStructure) {
		s.DaysToRace = domain.DaysBetween(minDays, maxDays)
	}
}

func WithMinDaysToRace(minDays int) StructureOption {
	return func(s *domain.WeekStructure) {
		s.DaysToRace = domain.DaysAtLeast(minDays)
	}
}

func WithPriority(p int) StructureOption {
	return func(s *domain.WeekStructure) {
		s.Priority = p
	}
}

func WithRaceDistances(ds ...string) StructureOption {
	return func(s *domain.WeekStructure) {
		s.RaceDistances = ds
	}
}

func WithAudiences(as ...domain.Audience) StructureOption {
	return func(s *domain.WeekStructure) {
		s.Audiences = as
	}
}

func WithSessionTypes(m map[int]string) StructureOption {
	return func(s *domain.WeekStructure) {
		s.SessionTypes = m
	}
}

func WithDays(days []domain.StructureDay) StructureOption {
	return func(s *domain.WeekStructure) {
		s.Days = days
	}
}

// NewTestStructure returns a valid structure for the phase. Taper and
// recovery weeks carry at most one hard day and one long run.
func NewTestStructure(id, philosophyID string, phase domain.Focus, opts ...StructureOption) domain.WeekStructure {
	s := domain.WeekStructure{
		ID:            id,
		PhilosophyID:  philosophyID,
		Phase:         phase,
		SessionGroups: standardGroups(),
		Rules:         domain.StructureRules{HardDaysMax: 2, NoConsecutiveHard: true, LongRunsRequired: 1},
	}
	switch phase {
	case domain.FocusTaper:
		s.Days = WeekDays(domain.DayRest, domain.DayHard, domain.DayEasy, domain.DayEasy, domain.DayRest, domain.DayEasy, domain.DayLong)
		s.Rules.HardDaysMax = 1
	case domain.FocusRecovery, domain.FocusBase:
		s.Days = WeekDays(domain.DayRest, domain.DayEasy, domain.DayModerate, domain.DayEasy, domain.DayRest, domain.DayRecovery, domain.DayLong)
	default:
		s.Days = WeekDays(domain.DayRest, domain.DayHard, domain.DayEasy, domain.DayHard, domain.DayEasy, domain.DayRecovery, domain.DayLong)
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// SamplePhilosophies returns a small corpus of philosophies covering both
// domains, an audience-restricted entry and a constrained entry.
func SamplePhilosophies() []domain.Philosophy {
	road := []string{domain.Distance5K, domain.Distance10K, domain.DistanceHalfMarathon, domain.DistanceMarathon}
	return []domain.Philosophy{
		{
			ID: "daniels", Domain: domain.DomainRunning, Version: "2.1", Priority: 10,
			RaceDistances: road,
			Audiences:     []domain.Audience{domain.AudienceIntermediate, domain.AudienceAdvanced},
			Prohibits:     []string{"injured"},
			Description:   "Quality sessions at VDOT paces with steady mileage.",
		},
		{
			ID: "hansons", Domain: domain.DomainRunning, Version: "1.0", Priority: 10,
			RaceDistances: []string{domain.DistanceHalfMarathon, domain.DistanceMarathon},
			Audiences:     []domain.Audience{domain.AudienceAll},
			Description:   "Cumulative fatigue with a capped long run.",
		},
		{
			ID: "lydiard", Domain: domain.DomainRunning, Version: "3.0", Priority: 5,
			RaceDistances: road,
			Audiences:     []domain.Audience{domain.AudienceAll},
			Description:   "Aerobic base first, then hills and sharpening.",
		},
		{
			ID: "heart-rate", Domain: domain.DomainRunning, Version: "1.0", Priority: 50,
			RaceDistances: road,
			Audiences:     []domain.Audience{domain.AudienceAll},
			Requires:      []string{"hr_monitor"},
			Description:   "Zone-capped training by heart rate.",
		},
		{
			ID: "koop", Domain: domain.DomainUltra, Version: "1.2", Priority: 10,
			RaceDistances: []string{domain.Distance50K, domain.Distance50Mile, domain.Distance100K, domain.Distance100Mile},
			Audiences:     []domain.Audience{domain.AudienceAll},
			Description:   "Time on feet and specific ultra preparation.",
		},
	}
}

// SampleStructures returns one structure per phase for every sample
// philosophy, plus two days-to-race-ranged daniels build structures.
func SampleStructures() []domain.WeekStructure {
	phases := []domain.Focus{
		domain.FocusBase, domain.FocusBuild, domain.FocusTaper, domain.FocusRecovery,
		domain.FocusSharpening, domain.FocusSpecific, domain.FocusExploration,
	}
	var out []domain.WeekStructure
	for _, p := range SamplePhilosophies() {
		for _, phase := range phases {
			if p.ID == "daniels" && phase == domain.FocusBuild {
				continue
			}
			opts := []StructureOption{}
			if p.ID == "daniels" {
				opts = append(opts, WithSessionTypes(map[int]string{1: "intervals", 3: "tempo", 6: "long_run"}))
			}
			out = append(out, NewTestStructure(p.ID+"-"+string(phase), p.ID, phase, opts...))
		}
	}
	danielsTypes := WithSessionTypes(map[int]string{1: "intervals", 3: "tempo", 6: "long_run"})
	out = append(out,
		NewTestStructure("daniels-build-early", "daniels", domain.FocusBuild, WithMinDaysToRace(56), danielsTypes),
		NewTestStructure("daniels-build-late", "daniels", domain.FocusBuild, WithDaysToRace(0, 55), danielsTypes),
	)
	return out
}

// SampleTemplates returns shared templates for every fallback session type
// plus daniels-specific quality sessions.
func SampleTemplates() []domain.SessionTemplate {
	return []domain.SessionTemplate{
		{
			ID: "easy-aerobic", DescriptionKey: "easy_aerobic", Kind: domain.KindEasy,
			SessionTypes: []string{"easy", "steady"},
			Params:       map[string]float64{"pace_min_per_mi": 10},
			Description:  "Conversational aerobic running.",
		},
		{
			ID: "recovery-jog", DescriptionKey: "recovery_jog", Kind: domain.KindRecovery,
			SessionTypes: []string{"recovery"},
			Params:       map[string]float64{"pace_min_per_mi": 11},
			Description:  "Very easy recovery jog.",
		},
		{
			ID: "long-steady", DescriptionKey: "long_steady", Kind: domain.KindLong,
			SessionTypes: []string{"long_run"},
			Params:       map[string]float64{"pace_min_per_mi": 10},
			Description:  "Steady long run.",
		},
		{
			ID: "rest-day", DescriptionKey: "rest_day", Kind: domain.KindRest,
			SessionTypes: []string{"rest"},
			Description:  "Full rest.",
		},
		{
			ID: "fartlek", DescriptionKey: "fartlek", Kind: domain.KindInterval,
			SessionTypes: []string{"intervals", "race"},
			Params:       map[string]float64{"reps": 6, "rep_minutes": 2, "recovery_minutes": 2},
			Constraints:  domain.TemplateConstraints{MaxHardMinutes: 15},
			Description:  "Unstructured speed play.",
		},
		{
			ID: "vo2-intervals", PhilosophyID: "daniels", DescriptionKey: "intervals_vo2", Kind: domain.KindInterval,
			SessionTypes: []string{"intervals"},
			Params:       map[string]float64{"reps": 5, "rep_minutes": 3, "recovery_minutes": 3},
			Constraints: domain.TemplateConstraints{
				MaxHardMinutes:      20,
				MaxIntensityMinutes: map[string]float64{domain.BucketHard: 20},
			},
			Description: "VO2max repeats at interval pace.",
		},
		{
			ID: "threshold-tempo", PhilosophyID: "daniels", DescriptionKey: "tempo_threshold", Kind: domain.KindTempo,
			SessionTypes: []string{"tempo"},
			Params:       map[string]float64{"tempo_minutes": 20},
			Constraints:  domain.TemplateConstraints{MaxHardMinutes: 30},
			Description:  "Continuous threshold run.",
		},
	}
}

// SampleCorpus bundles the sample documents into a corpus.
func SampleCorpus() *corpus.Corpus {
	return corpus.New(SamplePhilosophies(), SampleStructures(), SampleTemplates())
}
