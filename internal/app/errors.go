package app

import (
	"errors"
	"fmt"
)

// ErrorKind classifies plan-generation failures. Kinds, not concrete
// types, drive the orchestrator's stop/downgrade decisions.
type ErrorKind string

const (
	ErrContext       ErrorKind = "CONTEXT"
	ErrGeneration    ErrorKind = "GENERATION"
	ErrResolution    ErrorKind = "RESOLUTION"
	ErrAllocation    ErrorKind = "ALLOCATION"
	ErrInvariant     ErrorKind = "INVARIANT"
	ErrPersistence   ErrorKind = "PERSISTENCE"
	ErrConfiguration ErrorKind = "CONFIGURATION"
	ErrCanceled      ErrorKind = "CANCELED"
	ErrDuplicate     ErrorKind = "DUPLICATE"
)

// PlanError is the typed error raised by pipeline components.
type PlanError struct {
	Kind    ErrorKind
	Stage   Stage
	Message string
	Err     error
}

func (e *PlanError) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Stage != "" {
		msg = string(e.Stage) + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// Errorf builds a PlanError of the given kind without a cause.
func Errorf(kind ErrorKind, format string, args ...any) *PlanError {
	return &PlanError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a PlanError of the given kind around cause.
func Wrap(kind ErrorKind, cause error, format string, args ...any) *PlanError {
	return &PlanError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first PlanError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err carries a PlanError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// AtStage returns err annotated with the stage it surfaced in. PlanErrors
// are copied so the caller's value is not mutated.
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var pe *PlanError
	if errors.As(err, &pe) {
		annotated := *pe
		if annotated.Stage == "" {
			annotated.Stage = stage
		}
		return &annotated
	}
	return &PlanError{Kind: ErrGeneration, Stage: stage, Message: "stage failed", Err: err}
}
