package sessiontext

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
)

// DistanceEpsilon is how far generated distance may exceed the allocation.
const DistanceEpsilon = 0.05

const minuteEpsilon = 1e-6

var validSegments = map[domain.Segment]bool{
	domain.SegmentWarmup: true, domain.SegmentMain: true, domain.SegmentCooldown: true,
}

var validIntensities = map[string]bool{
	domain.BucketEasy: true, domain.BucketModerate: true, domain.BucketHard: true,
}

// Metrics derives the session metrics from its steps.
func Metrics(steps []domain.SessionStep) domain.SessionMetrics {
	m := domain.SessionMetrics{IntensityMinutes: make(map[string]float64)}
	for _, s := range steps {
		m.TotalDistanceMi += s.DistanceMi
		m.DurationMin += s.DurationMin
		m.IntensityMinutes[s.Intensity] += s.DurationMin
		if s.Intensity == domain.BucketHard {
			m.HardMinutes += s.DurationMin
		}
	}
	return m
}

// Validate checks generated text against the allocated distance and the
// template's ceilings.
func Validate(out domain.SessionTextOutput, allocated float64, tpl domain.SessionTemplate) error {
	var errs []error
	if strings.TrimSpace(out.Title) == "" {
		errs = append(errs, errors.New("title: must not be empty"))
	}
	if strings.TrimSpace(out.Description) == "" {
		errs = append(errs, errors.New("description: must not be empty"))
	}
	if len(out.Structure) == 0 {
		errs = append(errs, errors.New("structure: must not be empty"))
	}
	for i, s := range out.Structure {
		if !validSegments[s.Segment] {
			errs = append(errs, fmt.Errorf("structure[%d].segment: invalid value %q", i, s.Segment))
		}
		if !validIntensities[s.Intensity] {
			errs = append(errs, fmt.Errorf("structure[%d].intensity: invalid value %q", i, s.Intensity))
		}
		if s.DistanceMi < 0 || s.DurationMin < 0 {
			errs = append(errs, fmt.Errorf("structure[%d]: negative distance or duration", i))
		}
	}

	m := out.Metrics
	if m.TotalDistanceMi > allocated+DistanceEpsilon {
		errs = append(errs, fmt.Errorf("total_distance_mi: %.2f exceeds allocated %.2f", m.TotalDistanceMi, allocated))
	}
	if ceiling := tpl.Constraints.MaxHardMinutes; ceiling > 0 && m.HardMinutes > ceiling+minuteEpsilon {
		errs = append(errs, fmt.Errorf("hard_minutes: %.1f exceeds %.1f", m.HardMinutes, ceiling))
	}
	for _, bucket := range slices.Sorted(maps.Keys(tpl.Constraints.MaxIntensityMinutes)) {
		ceiling := tpl.Constraints.MaxIntensityMinutes[bucket]
		if got := m.IntensityMinutes[bucket]; got > ceiling+minuteEpsilon {
			errs = append(errs, fmt.Errorf("intensity_minutes[%s]: %.1f exceeds %.1f", bucket, got, ceiling))
		}
	}
	return errors.Join(errs...)
}
