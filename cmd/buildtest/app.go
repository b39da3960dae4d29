// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/buildtest/buildtest/internal/config"
	"github.com/buildtest/buildtest/internal/issue"
	"github.com/buildtest/buildtest/internal/pipeline"
	"github.com/buildtest/buildtest/internal/runtime"

	"github.com/charmbracelet/log"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer.
	App struct {
		Config   ConfigProvider
		Executor pipeline.Executor
		Prober   runtime.Prober
		// Lock takes the build-directory lock; nil disables locking.
		Lock pipeline.LockFunc
		// Roots finds the repository root when --root is not given.
		Roots pipeline.RootFinder

		stdout io.Writer
		stderr io.Writer
		stdin  io.Reader
		logger *log.Logger

		// Global flag values.
		verbose bool
		cfgFile string
		// glamourStyle renders issue guides; set from ui.color_scheme.
		glamourStyle string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Executor pipeline.Executor
		Prober   runtime.Prober
		Lock     pipeline.LockFunc
		Roots    pipeline.RootFinder
		Stdout   io.Writer
		Stderr   io.Writer
		Stdin    io.Reader
	}
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Executor == nil {
		deps.Executor = runtime.NewDefaultRegistry()
	}
	if deps.Prober == nil {
		deps.Prober = runtime.PathProber{}
	}
	if deps.Lock == nil {
		deps.Lock = pipeline.AcquireBuildLock
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}

	app := &App{
		Config:       deps.Config,
		Executor:     deps.Executor,
		Prober:       deps.Prober,
		Lock:         deps.Lock,
		Roots:        deps.Roots,
		stdout:       deps.Stdout,
		stderr:       deps.Stderr,
		stdin:        deps.Stdin,
		glamourStyle: glamourStyleFor(config.ColorSchemeAuto),
	}
	app.logger = newLogger(app.stderr)
	return app
}

// loadOptions returns the config lookup inputs from global flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.cfgFile}
}

// loadConfig loads configuration and applies its UI settings.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, &ExitError{Code: runtime.ExitFailure, Err: newServiceError(err, issue.ConfigLoadFailedId)}
	}
	if cfg.UI.Verbose && !a.verbose {
		a.setVerbose(true)
	}
	a.glamourStyle = glamourStyleFor(cfg.UI.ColorScheme)
	return cfg, nil
}

// ioContext returns the streams handed to collaborators.
func (a *App) ioContext() runtime.IOContext {
	return runtime.IOContext{Stdout: a.stdout, Stderr: a.stderr, Stdin: a.stdin}
}

func glamourStyleFor(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
