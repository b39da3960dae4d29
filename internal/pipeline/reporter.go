// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"
	"io"
)

type (
	// Reporter is told when each stage starts.
	Reporter interface {
		StageStarted(stage Stage)
	}

	// WriterReporter prints each stage label on its own line.
	WriterReporter struct {
		W io.Writer
		// Style decorates the label. Nil prints it unchanged.
		Style func(string) string
	}

	// ReporterFunc adapts a function to Reporter.
	ReporterFunc func(stage Stage)
)

// StageStarted implements Reporter.
func (r *WriterReporter) StageStarted(stage Stage) {
	label := stage.Label
	if r.Style != nil {
		label = r.Style(label)
	}
	fmt.Fprintln(r.W, label)
}

// StageStarted implements Reporter.
func (f ReporterFunc) StageStarted(stage Stage) { f(stage) }
