// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/buildtest/buildtest/internal/runtime"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE
// handlers. A nil Err means the failure has already been reported (by the
// collaborator's own output) and nothing more is printed.
type ExitError struct {
	Code runtime.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageError marks err as a command-line mistake (exit 2).
func usageError(err error) *ExitError {
	return &ExitError{Code: runtime.ExitUsage, Err: err}
}

// exitCodeOf maps an error returned by the command tree to a process exit code.
func exitCodeOf(err error) runtime.ExitCode {
	if err == nil {
		return runtime.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return runtime.ExitFailure
}
