// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/buildtest/buildtest/internal/issue"
	"github.com/buildtest/buildtest/internal/runtime"
)

// ErrBuildLockFailed is wrapped when the build-directory lock cannot be taken.
var ErrBuildLockFailed = errors.New("build lock failed")

type (
	// Executor runs one invocation. *runtime.Registry implements it.
	Executor interface {
		Execute(ctx *runtime.ExecutionContext) *runtime.Result
	}

	// LockFunc takes the build-directory lock and returns its release func.
	LockFunc func(buildDir string) (release func(), err error)

	// Runner executes the selected stages in order and stops at the first
	// failure.
	Runner struct {
		Planner   *Planner
		Executor  Executor
		Prober    runtime.Prober
		Reporter  Reporter
		Lock      LockFunc
		Selection Selection
	}

	// Outcome is the result of a run.
	Outcome struct {
		// ExitCode is 0, the first failing collaborator's code, or an
		// orchestrator code (1, 127).
		ExitCode runtime.ExitCode
		// State is Succeeded or FailedAt(stage).
		State State
		// Err is set for orchestrator-side failures only. A collaborator that
		// exits non-zero leaves it nil: its own output is the diagnostic.
		Err error
		// Stages lists every stage that started, in order.
		Stages []StageResult
	}
)

// AcquireBuildLock takes the flock on buildDir. Platforms without flock run
// unlocked.
func AcquireBuildLock(buildDir string) (func(), error) {
	lock, err := runtime.AcquireBuildLock(buildDir)
	if errors.Is(err, runtime.ErrFlockUnavailable) {
		slog.Debug("build lock unavailable on this platform; running unlocked")
		return func() {}, nil
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("build lock acquired", "dir", buildDir)
	return lock.Release, nil
}

// FailedAt returns the stage that failed, or "" on success.
func (o *Outcome) FailedAt() StageID {
	if o.State.Phase != PhaseFailed {
		return ""
	}
	return o.State.Stage
}

// Run executes the pipeline. It blocks until the last selected stage
// finishes or one fails.
func (r *Runner) Run(ctx context.Context) *Outcome {
	out := &Outcome{}
	state := &out.State
	release := func() {}
	defer func() { release() }()
	locked := false

	for _, stage := range r.Selection.Stages() {
		if !locked && stage.ID != StageGenerate && r.Lock != nil {
			rel, err := r.Lock(r.Planner.BuildDir())
			if err != nil {
				state.start(stage.ID)
				state.fail()
				out.ExitCode = runtime.ExitFailure
				out.Err = issue.NewErrorContext().
					WithOperation("lock build directory").
					WithResource(r.Planner.BuildDir()).
					WithSuggestion("Check that the build directory is writable").
					Wrap(fmt.Errorf("%w: %w", ErrBuildLockFailed, err)).
					BuildError()
				return out
			}
			release = rel
			locked = true
		}

		state.start(stage.ID)
		r.Reporter.StageStarted(stage)

		started := time.Now()
		res := r.runStage(ctx, stage.ID)
		res.Duration = time.Since(started)
		out.Stages = append(out.Stages, res.StageResult)

		slog.Debug("stage finished",
			"stage", stage.ID,
			"status", res.Status,
			"exit_code", res.ExitCode,
			"duration", res.Duration.Round(time.Millisecond),
		)

		if res.Status == StatusFailed {
			state.fail()
			out.ExitCode = res.ExitCode
			out.Err = res.err
			return out
		}
	}

	state.succeed()
	return out
}

type stageRun struct {
	StageResult
	err error
}

func (r *Runner) runStage(ctx context.Context, id StageID) stageRun {
	run := stageRun{StageResult: StageResult{ID: id, Status: StatusOK}}

	if id == StageLint {
		probe := r.Planner.LintProbe()
		path, ok := r.Prober.LookPath(probe)
		if !ok {
			slog.Debug("lint tool not on PATH; skipping", "probe", probe)
			run.Status = StatusSkipped
			return run
		}
		slog.Debug("lint tool found", "probe", probe, "path", path)
	}

	invocations, err := r.Planner.Invocations(ctx, id)
	if err != nil {
		run.Status = StatusFailed
		run.ExitCode = runtime.ExitFailure
		run.err = err
		return run
	}

	for _, inv := range invocations {
		result := r.Executor.Execute(inv)
		if result.Success() {
			continue
		}
		run.Status = StatusFailed
		run.ExitCode = result.ExitCode
		if result.ExitCode.IsSuccess() {
			run.ExitCode = runtime.ExitFailure
		}
		run.err = invocationError(inv, result)
		return run
	}
	return run
}

// invocationError turns a failed Result into the error shown to the user.
// A plain non-zero exit yields nil.
func invocationError(inv *runtime.ExecutionContext, result *runtime.Result) error {
	if result.Error == nil {
		return nil
	}
	if errors.Is(result.Error, runtime.ErrStartFailed) {
		return issue.NewErrorContext().
			WithOperation("start " + inv.Program).
			WithSuggestion(fmt.Sprintf("Check that %s is installed and executable", inv.Program)).
			WithSuggestion("Run 'buildtest plan' to see every invocation").
			Wrap(result.Error).
			BuildError()
	}
	return issue.WrapWithOperation(result.Error, "run "+inv.Program)
}
