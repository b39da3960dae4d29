// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app. Without a subcommand
// the root runs the pipeline.
func NewRootCommand(app *App) *cobra.Command {
	run := &pipelineFlags{}

	rootCmd := &cobra.Command{
		Use:   "buildtest",
		Short: "Generate, build, lint and test the repository in one fail-fast run",
		Long: TitleStyle.Render("buildtest") + SubtitleStyle.Render(" - sequential build-and-test orchestrator") + `

buildtest runs five stages in order and stops at the first failure,
exiting with the failing tool's own exit code:

  1. generate    run the code generator
  2. build       configure with CMake and compile the test targets
  3. lint        run the lint wrapper (skipped when the lint tool is absent)
  4. test        run the primary test binary
  5. test-root   run the secondary test binary against the tests directory

` + SubtitleStyle.Render("Examples:") + `
  buildtest                         Run every stage
  buildtest --filter 'Bip32.*'      Narrow the secondary test suite
  buildtest --only test,test-root   Re-run the tests without rebuilding
  buildtest plan                    Show what would run`,
		Args: noArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if app.verbose {
				app.setVerbose(true)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPipeline(cmd, run)
		},
	}

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	rootCmd.SetIn(app.stdin)

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output and debug logging")
	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/buildtest/config.cue)")
	run.register(rootCmd, true)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newPlanCommand(app))
	rootCmd.AddCommand(newStagesCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()))
	}
	return nil
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the CLI and exits with the pipeline's exit code.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	os.Exit(int(execute(context.Background(), app, os.Args[1:])))
}

func execute(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithErrorHandler(app.handleError),
		fang.WithNotifySignal(os.Interrupt),
	)
	return int(exitCodeOf(err))
}

// handleError prints command errors. Collaborator failures print nothing:
// the tool's own output is the diagnostic.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(w, svcErr, a.verbose, a.glamourStyle)
		return
	}

	fang.DefaultErrorHandler(w, styles, err)
}
