// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"strconv"
)

// Exit codes the orchestrator produces itself.
const (
	// ExitSuccess means every executed stage exited 0.
	ExitSuccess ExitCode = 0
	// ExitFailure is used for orchestrator-side failures (config, paths, lock).
	ExitFailure ExitCode = 1
	// ExitUsage is used for invalid command-line input.
	ExitUsage ExitCode = 2
	// ExitNotFound mirrors the shell's "command not found" status.
	ExitNotFound ExitCode = 127
)

// ErrInvalidExitCode is wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is a process exit status in the POSIX range 0-255.
	ExitCode int

	// InvalidExitCodeError reports an ExitCode outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements error.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// IsValid reports whether c is within 0-255.
func (c ExitCode) IsValid() (bool, []error) {
	if c < 0 || c > 255 {
		return false, []error{&InvalidExitCodeError{Value: c}}
	}
	return true, nil
}

// IsSuccess reports whether c is zero.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal form.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
