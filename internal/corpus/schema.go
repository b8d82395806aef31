package corpus

// Document kinds accepted in the corpus.
const (
	KindPhilosophy = "philosophy"
	KindStructure  = "structure"
	KindTemplate   = "template"
)

// header is decoded first to route a document to its schema.
type header struct {
	Kind string `yaml:"kind"`
	ID   string `yaml:"id"`
}

// PhilosophyDoc is the YAML shape of a philosophy document.
type PhilosophyDoc struct {
	Kind          string   `yaml:"kind"`
	ID            string   `yaml:"id"`
	Domain        string   `yaml:"domain"`
	Version       string   `yaml:"version"`
	Priority      int      `yaml:"priority"`
	RaceDistances []string `yaml:"race_distances"`
	Audiences     []string `yaml:"audiences"`
	Requires      []string `yaml:"requires"`
	Prohibits     []string `yaml:"prohibits"`
	Description   string   `yaml:"description"`
}

// StructureDoc is the YAML shape of a week-structure document.
type StructureDoc struct {
	Kind          string              `yaml:"kind"`
	ID            string              `yaml:"id"`
	Philosophy    string              `yaml:"philosophy"`
	Phase         string              `yaml:"phase"`
	RaceDistances []string            `yaml:"race_distances"`
	Audiences     []string            `yaml:"audiences"`
	DaysToRace    *DayRangeDoc        `yaml:"days_to_race"`
	Priority      int                 `yaml:"priority"`
	Days          []DayDoc            `yaml:"days"`
	Rules         RulesDoc            `yaml:"rules"`
	SessionGroups map[string][]string `yaml:"session_groups"`
	SessionTypes  map[int]string      `yaml:"session_types"`
	Guards        []string            `yaml:"guards"`
	Description   string              `yaml:"description"`
}

// DayRangeDoc is a days-to-race window. Omitting max leaves it open.
type DayRangeDoc struct {
	Min int  `yaml:"min"`
	Max *int `yaml:"max"`
}

type DayDoc struct {
	Day  int    `yaml:"day"`
	Type string `yaml:"type"`
}

type RulesDoc struct {
	HardDaysMax       int  `yaml:"hard_days_max"`
	NoConsecutiveHard bool `yaml:"no_consecutive_hard"`
	LongRunsRequired  int  `yaml:"long_runs_required"`
}

// TemplateDoc is the YAML shape of a session-template document.
// An empty Philosophy marks a template shared by every philosophy.
type TemplateDoc struct {
	Kind           string             `yaml:"kind"`
	ID             string             `yaml:"id"`
	Philosophy     string             `yaml:"philosophy"`
	DescriptionKey string             `yaml:"description_key"`
	TemplateKind   string             `yaml:"template_kind"`
	SessionTypes   []string           `yaml:"session_types"`
	Params         map[string]float64 `yaml:"params"`
	Constraints    ConstraintsDoc     `yaml:"constraints"`
	Tags           []string           `yaml:"tags"`
	Description    string             `yaml:"description"`
}

type ConstraintsDoc struct {
	MaxHardMinutes      float64            `yaml:"max_hard_minutes"`
	MaxIntensityMinutes map[string]float64 `yaml:"max_intensity_minutes"`
}
