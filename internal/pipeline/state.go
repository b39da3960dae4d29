// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"
	"time"

	"github.com/buildtest/buildtest/internal/runtime"
)

// Pipeline phases.
const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseSucceeded
	PhaseFailed
)

// Stage statuses recorded in an Outcome.
const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

type (
	// Phase is the coarse pipeline state.
	Phase int

	// State is NotStarted, Running(stage), Succeeded or FailedAt(stage).
	// Transitions only move forward; PhaseFailed and PhaseSucceeded are terminal.
	State struct {
		Phase Phase
		Stage StageID
	}

	// Status is the result of one stage.
	Status string

	// StageResult records one stage that started.
	StageResult struct {
		ID       StageID
		Status   Status
		ExitCode runtime.ExitCode
		Duration time.Duration
	}
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseRunning:
		return "running"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// String renders the state, e.g. "running(build)" or "failed at(test)".
func (s State) String() string {
	switch s.Phase {
	case PhaseRunning:
		return fmt.Sprintf("running(%s)", s.Stage)
	case PhaseFailed:
		return fmt.Sprintf("failed at(%s)", s.Stage)
	default:
		return s.Phase.String()
	}
}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s.Phase == PhaseSucceeded || s.Phase == PhaseFailed
}

func (s *State) start(id StageID) {
	if s.Terminal() {
		panic(fmt.Sprintf("pipeline: start %s from terminal state %s", id, s))
	}
	*s = State{Phase: PhaseRunning, Stage: id}
}

func (s *State) fail() {
	*s = State{Phase: PhaseFailed, Stage: s.Stage}
}

func (s *State) succeed() {
	if s.Terminal() {
		panic(fmt.Sprintf("pipeline: succeed from terminal state %s", s))
	}
	*s = State{Phase: PhaseSucceeded}
}
