package app

// Stage names a pipeline state.
type Stage string

const (
	StageInit        Stage = "init"
	StageMacroPlan   Stage = "macro_plan"
	StagePhilosophy  Stage = "philosophy"
	StageStructure   Stage = "structure"
	StageVolume      Stage = "volume"
	StageTemplates   Stage = "templates"
	StageSessionText Stage = "session_text"
	StagePersist     Stage = "persist"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// StageOrder is the only legal forward sequence of stages.
var StageOrder = []Stage{
	StageInit,
	StageMacroPlan,
	StagePhilosophy,
	StageStructure,
	StageVolume,
	StageTemplates,
	StageSessionText,
	StagePersist,
	StageDone,
}

// Next returns the stage that must follow s, or "" for terminal stages.
func (s Stage) Next() Stage {
	for i, st := range StageOrder {
		if st == s && i+1 < len(StageOrder) {
			return StageOrder[i+1]
		}
	}
	return ""
}

// Terminal reports whether no transition leaves s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}
