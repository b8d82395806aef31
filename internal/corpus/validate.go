package corpus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
)

var validDomains = map[string]bool{
	string(domain.DomainRunning): true,
	string(domain.DomainUltra):   true,
}

var validAudiences = map[string]bool{
	string(domain.AudienceBeginner):     true,
	string(domain.AudienceIntermediate): true,
	string(domain.AudienceAdvanced):     true,
	string(domain.AudienceAll):          true,
}

// validate checks every parsed document and the references between them.
// It returns all problems found rather than stopping at the first.
func validate(p *parsed) []error {
	var errs []error

	philosophies := make(map[string]bool)
	for _, n := range p.philosophies {
		errs = append(errs, prefix(n.source, validatePhilosophy(n.doc))...)
		if n.doc.ID == "" {
			continue
		}
		if philosophies[n.doc.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate philosophy id %q", n.source, n.doc.ID))
		}
		philosophies[n.doc.ID] = true
	}

	structures := make(map[string]bool)
	for _, n := range p.structures {
		errs = append(errs, prefix(n.source, validateStructure(n.doc))...)
		if n.doc.Philosophy != "" && !philosophies[n.doc.Philosophy] {
			errs = append(errs, fmt.Errorf("%s: structure %s: unknown philosophy %q", n.source, n.doc.ID, n.doc.Philosophy))
		}
		if n.doc.ID == "" {
			continue
		}
		if structures[n.doc.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate structure id %q", n.source, n.doc.ID))
		}
		structures[n.doc.ID] = true
	}

	templates := make(map[string]bool)
	for _, n := range p.templates {
		errs = append(errs, prefix(n.source, validateTemplate(n.doc))...)
		if n.doc.Philosophy != "" && !philosophies[n.doc.Philosophy] {
			errs = append(errs, fmt.Errorf("%s: template %s: unknown philosophy %q", n.source, n.doc.ID, n.doc.Philosophy))
		}
		if n.doc.ID == "" {
			continue
		}
		if templates[n.doc.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate template id %q", n.source, n.doc.ID))
		}
		templates[n.doc.ID] = true
	}

	return errs
}

func validatePhilosophy(d PhilosophyDoc) []error {
	var errs []error

	if d.ID == "" {
		errs = append(errs, fmt.Errorf("philosophy: id is required"))
	}
	if !validDomains[d.Domain] {
		errs = append(errs, fmt.Errorf("philosophy %s: domain: invalid value %q", d.ID, d.Domain))
	}
	if d.Version == "" {
		errs = append(errs, fmt.Errorf("philosophy %s: version is required", d.ID))
	}
	if len(d.RaceDistances) == 0 {
		errs = append(errs, fmt.Errorf("philosophy %s: race_distances must not be empty", d.ID))
	}
	errs = append(errs, validateDistances("philosophy "+d.ID, d.RaceDistances)...)
	errs = append(errs, validateAudiences("philosophy "+d.ID, d.Audiences)...)

	return errs
}

func validateStructure(d StructureDoc) []error {
	var errs []error
	label := "structure " + d.ID

	if d.ID == "" {
		errs = append(errs, fmt.Errorf("structure: id is required"))
	}
	if d.Philosophy == "" {
		errs = append(errs, fmt.Errorf("%s: philosophy is required", label))
	}
	if !domain.ValidFocuses[d.Phase] {
		errs = append(errs, fmt.Errorf("%s: phase: invalid value %q", label, d.Phase))
	}
	errs = append(errs, validateDistances(label, d.RaceDistances)...)
	errs = append(errs, validateAudiences(label, d.Audiences)...)

	if r := d.DaysToRace; r != nil {
		if r.Min < 0 {
			errs = append(errs, fmt.Errorf("%s: days_to_race.min must be >= 0, got %d", label, r.Min))
		}
		if r.Max != nil && *r.Max < r.Min {
			errs = append(errs, fmt.Errorf("%s: days_to_race.max (%d) must be >= min (%d)", label, *r.Max, r.Min))
		}
	}

	errs = append(errs, validateDays(label, d)...)
	errs = append(errs, validateRules(label, d)...)

	for day := range d.SessionTypes {
		if day < 0 || day > 6 {
			errs = append(errs, fmt.Errorf("%s: session_types: day %d out of range 0-6", label, day))
		}
	}
	return errs
}

// validateDays checks the 7-day skeleton and its session groups. Every
// day type maps to exactly one group and exactly one day lands in the long
// group, which absorbs allocation drift.
func validateDays(label string, d StructureDoc) []error {
	var errs []error

	memberOf := groupMembership(d.SessionGroups)
	types := make([]string, 0, len(memberOf))
	for t := range memberOf {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if gs := memberOf[t]; len(gs) > 1 {
			errs = append(errs, fmt.Errorf("%s: session_groups: type %q belongs to more than one group (%s)", label, t, strings.Join(gs, ", ")))
		}
	}

	if len(d.Days) != 7 {
		errs = append(errs, fmt.Errorf("%s: days: expected 7 entries, got %d", label, len(d.Days)))
	}
	seen := make(map[int]bool)
	for _, day := range d.Days {
		if day.Day < 0 || day.Day > 6 {
			errs = append(errs, fmt.Errorf("%s: days: index %d out of range 0-6", label, day.Day))
		} else if seen[day.Day] {
			errs = append(errs, fmt.Errorf("%s: days: duplicate index %d", label, day.Day))
		}
		seen[day.Day] = true
		if !domain.ValidDayTypes[day.Type] {
			errs = append(errs, fmt.Errorf("%s: days[%d]: invalid type %q", label, day.Day, day.Type))
			continue
		}
		if len(memberOf[day.Type]) == 0 {
			errs = append(errs, fmt.Errorf("%s: days[%d]: type %q belongs to no session group", label, day.Day, day.Type))
		}
	}
	longDays := 0
	for _, day := range d.Days {
		if gs := memberOf[day.Type]; len(gs) == 1 && gs[0] == domain.LongGroup {
			longDays++
		}
	}
	if longDays != 1 {
		errs = append(errs, fmt.Errorf("%s: session group %q must cover exactly one day, got %d", label, domain.LongGroup, longDays))
	}
	for group, members := range d.SessionGroups {
		for _, m := range members {
			if !domain.ValidDayTypes[m] {
				errs = append(errs, fmt.Errorf("%s: session_groups.%s: invalid type %q", label, group, m))
			}
		}
	}
	return errs
}

// validateRules checks the hard-day cap, the consecutive-hard ban, the
// long-run count and the taper caps against the skeleton.
func validateRules(label string, d StructureDoc) []error {
	var errs []error

	byDay := make(map[int]domain.DayType, len(d.Days))
	hard, long := 0, 0
	for _, day := range d.Days {
		t := domain.DayType(day.Type)
		byDay[day.Day] = t
		if t.IsHard() {
			hard++
		}
		if t == domain.DayLong {
			long++
		}
	}

	if d.Rules.HardDaysMax < 0 {
		errs = append(errs, fmt.Errorf("%s: rules.hard_days_max must be >= 0", label))
	} else if hard > d.Rules.HardDaysMax {
		errs = append(errs, fmt.Errorf("%s: %d hard days exceed hard_days_max %d", label, hard, d.Rules.HardDaysMax))
	}

	if d.Rules.NoConsecutiveHard {
		for i := 0; i < 6; i++ {
			if byDay[i].IsHard() && byDay[i+1].IsHard() {
				errs = append(errs, fmt.Errorf("%s: consecutive hard days %d and %d", label, i, i+1))
			}
		}
	}

	if d.Rules.LongRunsRequired < 0 {
		errs = append(errs, fmt.Errorf("%s: rules.long_runs_required must be >= 0", label))
	} else if d.Rules.LongRunsRequired > 0 && long != d.Rules.LongRunsRequired {
		errs = append(errs, fmt.Errorf("%s: long_runs_required %d but skeleton has %d", label, d.Rules.LongRunsRequired, long))
	}

	if domain.Focus(d.Phase) == domain.FocusTaper {
		if hard > 1 {
			errs = append(errs, fmt.Errorf("%s: taper structures allow at most 1 hard day, got %d", label, hard))
		}
		if long > 1 {
			errs = append(errs, fmt.Errorf("%s: taper structures allow at most 1 long run, got %d", label, long))
		}
	}
	return errs
}

func validateTemplate(d TemplateDoc) []error {
	var errs []error
	label := "template " + d.ID

	if d.ID == "" {
		errs = append(errs, fmt.Errorf("template: id is required"))
	}
	if d.DescriptionKey == "" {
		errs = append(errs, fmt.Errorf("%s: description_key is required", label))
	}
	if !domain.ValidTemplateKinds[d.TemplateKind] {
		errs = append(errs, fmt.Errorf("%s: template_kind: invalid value %q", label, d.TemplateKind))
	}
	if len(d.SessionTypes) == 0 {
		errs = append(errs, fmt.Errorf("%s: session_types must not be empty", label))
	}
	for name, v := range d.Params {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s: params.%s must be >= 0, got %g", label, name, v))
		}
	}
	if d.Constraints.MaxHardMinutes < 0 {
		errs = append(errs, fmt.Errorf("%s: constraints.max_hard_minutes must be >= 0", label))
	}
	for bucket, v := range d.Constraints.MaxIntensityMinutes {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s: constraints.max_intensity_minutes.%s must be >= 0", label, bucket))
		}
	}
	return errs
}

func validateDistances(label string, distances []string) []error {
	var errs []error
	for _, d := range distances {
		if !domain.IsKnownDistance(d) {
			errs = append(errs, fmt.Errorf("%s: race_distances: unknown distance %q", label, d))
		}
	}
	return errs
}

func validateAudiences(label string, audiences []string) []error {
	var errs []error
	for _, a := range audiences {
		if !validAudiences[a] {
			errs = append(errs, fmt.Errorf("%s: audiences: invalid value %q", label, a))
		}
	}
	return errs
}

// groupMembership maps each day type to the sorted names of the groups
// listing it.
func groupMembership(groups map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for name, members := range groups {
		seen := make(map[string]bool, len(members))
		for _, m := range members {
			if seen[m] {
				continue
			}
			seen[m] = true
			out[m] = append(out[m], name)
		}
	}
	for _, gs := range out {
		sort.Strings(gs)
	}
	return out
}

func prefix(source string, errs []error) []error {
	for i, err := range errs {
		errs[i] = fmt.Errorf("%s: %w", source, err)
	}
	return errs
}
