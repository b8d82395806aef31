package corpus

import (
	"maps"

	"github.com/alexanderramin/tempo/internal/domain"
)

func toPhilosophy(d PhilosophyDoc) domain.Philosophy {
	return domain.Philosophy{
		ID:            d.ID,
		Domain:        domain.TrainingDomain(d.Domain),
		Version:       d.Version,
		Priority:      d.Priority,
		RaceDistances: normalizeDistances(d.RaceDistances),
		Audiences:     toAudiences(d.Audiences),
		Requires:      d.Requires,
		Prohibits:     d.Prohibits,
		Description:   d.Description,
	}
}

func toStructure(d StructureDoc) domain.WeekStructure {
	s := domain.WeekStructure{
		ID:            d.ID,
		PhilosophyID:  d.Philosophy,
		Phase:         domain.Focus(d.Phase),
		RaceDistances: normalizeDistances(d.RaceDistances),
		Audiences:     toAudiences(d.Audiences),
		Priority:      d.Priority,
		Rules: domain.StructureRules{
			HardDaysMax:       d.Rules.HardDaysMax,
			NoConsecutiveHard: d.Rules.NoConsecutiveHard,
			LongRunsRequired:  d.Rules.LongRunsRequired,
		},
		SessionGroups: make(map[string][]domain.DayType, len(d.SessionGroups)),
		SessionTypes:  maps.Clone(d.SessionTypes),
		Guards:        d.Guards,
		Description:   d.Description,
	}
	if d.DaysToRace != nil {
		s.DaysToRace = domain.DayRange{Min: d.DaysToRace.Min}
		if d.DaysToRace.Max != nil {
			s.DaysToRace = domain.DaysBetween(d.DaysToRace.Min, *d.DaysToRace.Max)
		}
	}

	// Days are stored in index order regardless of document order.
	s.Days = make([]domain.StructureDay, 7)
	for _, day := range d.Days {
		s.Days[day.Day] = domain.StructureDay{Day: day.Day, Type: domain.DayType(day.Type)}
	}
	for group, members := range d.SessionGroups {
		types := make([]domain.DayType, len(members))
		for i, m := range members {
			types[i] = domain.DayType(m)
		}
		s.SessionGroups[group] = types
	}
	return s
}

func toTemplate(d TemplateDoc) domain.SessionTemplate {
	return domain.SessionTemplate{
		ID:             d.ID,
		PhilosophyID:   d.Philosophy,
		DescriptionKey: d.DescriptionKey,
		Kind:           domain.TemplateKind(d.TemplateKind),
		SessionTypes:   d.SessionTypes,
		Params:         maps.Clone(d.Params),
		Constraints: domain.TemplateConstraints{
			MaxHardMinutes:      d.Constraints.MaxHardMinutes,
			MaxIntensityMinutes: maps.Clone(d.Constraints.MaxIntensityMinutes),
		},
		Tags:        d.Tags,
		Description: d.Description,
	}
}

func normalizeDistances(in []string) []string {
	out := make([]string, len(in))
	for i, d := range in {
		out[i] = domain.NormalizeDistance(d)
	}
	return out
}

func toAudiences(in []string) []domain.Audience {
	out := make([]domain.Audience, len(in))
	for i, a := range in {
		out[i] = domain.Audience(a)
	}
	return out
}
