// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/buildtest/buildtest/internal/issue"
	"github.com/buildtest/buildtest/internal/pipeline"
	"github.com/buildtest/buildtest/internal/runtime"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyPipelineError picks the catalog entry explaining a pipeline failure.
func classifyPipelineError(err error) issue.Id {
	switch {
	case errors.Is(err, pipeline.ErrTestsRootNotFound):
		return issue.TestsRootNotFoundId
	case errors.Is(err, pipeline.ErrRootNotFound):
		return issue.RootNotFoundId
	case errors.Is(err, runtime.ErrStartFailed):
		return issue.ToolNotFoundId
	case errors.Is(err, pipeline.ErrBuildLockFailed):
		return issue.BuildLockFailedId
	default:
		return 0
	}
}

// renderServiceError prints the error followed by the optional issue guide.
// The guide is only rendered in verbose mode to keep failures short.
func renderServiceError(w io.Writer, svcErr *ServiceError, verbose bool, glamourStyle string) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(svcErr.Err, verbose))

	if svcErr.IssueID == 0 || !verbose {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(glamourStyle)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
			return
		}
		fmt.Fprint(w, rendered)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their Format method; verbose mode adds the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
