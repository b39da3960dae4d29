// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger and installs it as the slog default so
// internal packages can log through log/slog.
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "buildtest",
		Level:  log.InfoLevel,
	})
	slog.SetDefault(slog.New(logger))
	return logger
}

// setVerbose switches debug logging on or off.
func (a *App) setVerbose(verbose bool) {
	a.verbose = verbose
	if verbose {
		a.logger.SetLevel(log.DebugLevel)
		a.logger.SetReportTimestamp(true)
		return
	}
	a.logger.SetLevel(log.InfoLevel)
}
