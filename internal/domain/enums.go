package domain

type PlanKind string

const (
	PlanRace   PlanKind = "race"
	PlanSeason PlanKind = "season"
	PlanWeek   PlanKind = "week"
)

// ValidPlanKinds is the canonical set of accepted plan kind strings.
var ValidPlanKinds = map[string]bool{
	"race": true, "season": true, "week": true,
}

// Focus is the week-level training emphasis. Structures use the same
// values as their phase.
type Focus string

const (
	FocusBase        Focus = "base"
	FocusBuild       Focus = "build"
	FocusTaper       Focus = "taper"
	FocusRecovery    Focus = "recovery"
	FocusSharpening  Focus = "sharpening"
	FocusSpecific    Focus = "specific"
	FocusExploration Focus = "exploration"
)

// ValidFocuses is the canonical set of accepted focus/phase strings.
var ValidFocuses = map[string]bool{
	"base": true, "build": true, "taper": true, "recovery": true,
	"sharpening": true, "specific": true, "exploration": true,
}

// IsTaperOrRecovery reports whether a week with this focus may close a race plan.
func (f Focus) IsTaperOrRecovery() bool {
	return f == FocusTaper || f == FocusRecovery
}

type DayType string

const (
	DayRest     DayType = "rest"
	DayEasy     DayType = "easy"
	DayRecovery DayType = "recovery"
	DayModerate DayType = "moderate"
	DayHard     DayType = "hard"
	DayLong     DayType = "long"
	DayRace     DayType = "race"
)

// ValidDayTypes is the canonical set of accepted day type strings.
var ValidDayTypes = map[string]bool{
	"rest": true, "easy": true, "recovery": true, "moderate": true,
	"hard": true, "long": true, "race": true,
}

// IsHard reports whether the day counts against a structure's hard-day cap.
func (d DayType) IsHard() bool {
	return d == DayHard || d == DayRace
}

type Audience string

const (
	AudienceBeginner     Audience = "beginner"
	AudienceIntermediate Audience = "intermediate"
	AudienceAdvanced     Audience = "advanced"
	// AudienceAll marks a document as audience-agnostic.
	AudienceAll Audience = "all"
)

type TrainingDomain string

const (
	DomainRunning TrainingDomain = "running"
	DomainUltra   TrainingDomain = "ultra"
)

type TemplateKind string

const (
	KindInterval TemplateKind = "interval"
	KindTempo    TemplateKind = "tempo"
	KindEasy     TemplateKind = "easy"
	KindLong     TemplateKind = "long"
	KindRecovery TemplateKind = "recovery"
	KindRest     TemplateKind = "rest"
	KindGeneric  TemplateKind = "generic"
)

// ValidTemplateKinds is the canonical set of accepted template kind strings.
var ValidTemplateKinds = map[string]bool{
	"interval": true, "tempo": true, "easy": true, "long": true,
	"recovery": true, "rest": true, "generic": true,
}

// TextSource records how a session's text was produced.
type TextSource string

const (
	SourceProvider TextSource = "provider"
	SourceFallback TextSource = "fallback"
	SourceRest     TextSource = "rest"
)

type Segment string

const (
	SegmentWarmup   Segment = "warmup"
	SegmentMain     Segment = "main"
	SegmentCooldown Segment = "cooldown"
)

// Intensity buckets used for intensity-minute accounting.
const (
	BucketEasy     = "easy"
	BucketModerate = "moderate"
	BucketHard     = "hard"
)
