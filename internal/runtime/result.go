// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
)

// ErrStartFailed is wrapped by StartError.
var ErrStartFailed = errors.New("failed to start collaborator")

type (
	// Result is the outcome of one invocation.
	Result struct {
		// ExitCode is the collaborator's exit status.
		ExitCode ExitCode
		// Error is set for failures that did not come from the collaborator's
		// own exit status: start failures, invalid invocations, interpreter errors.
		Error error
	}

	// StartError reports a program that could not be started.
	StartError struct {
		Program string
		Err     error
	}
)

// Error implements error.
func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Program, e.Err)
}

// Unwrap returns both ErrStartFailed and the underlying cause.
func (e *StartError) Unwrap() []error { return []error{ErrStartFailed, e.Err} }

// NewErrorResult returns a Result carrying an orchestrator-side error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult returns a zero Result.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult returns a Result for a collaborator that exited normally.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// Success reports a zero exit with no error.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// resultFromWait converts the error returned by exec.Cmd.Run.
func resultFromWait(program string, err error) *Result {
	if err == nil {
		return NewSuccessResult()
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return NewErrorResult(ExitNotFound, &StartError{Program: program, Err: err})
	}

	code := ExitCode(exitErr.ExitCode())
	if code == -1 {
		// Killed by a signal: report 128+n like a POSIX shell.
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return NewExitCodeResult(ExitCode(128 + int(ws.Signal())))
		}
	}
	if ok, errs := code.IsValid(); !ok {
		return NewErrorResult(ExitFailure, errs[0])
	}
	return NewExitCodeResult(code)
}
