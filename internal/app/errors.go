package app

import (
	"errors"
	"fmt"
)

// ErrInterrupted is returned when an interrupt signal arrives while a
// command is running or the prompt is waiting.
var ErrInterrupted = errors.New("interrupted")

// Phase names a state of the trial-run lifecycle.
type Phase string

const (
	PhaseInit    Phase = "init"
	PhaseDryRun  Phase = "dry-run"
	PhaseConfirm Phase = "confirm"
	PhaseRealRun Phase = "real-run"
)

// StatusError carries the non-zero exit status of one of the two
// invocations. The entrypoint exits with Code and prints nothing: the
// child has already reported its own failure.
type StatusError struct {
	Phase Phase
	Code  int
}

// Error implements the error interface for StatusError.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Phase, e.Code)
}
