// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/buildtest/buildtest/internal/config"
	"github.com/buildtest/buildtest/internal/issue"
	"github.com/buildtest/buildtest/internal/pipeline"
	"github.com/buildtest/buildtest/internal/runtime"

	"github.com/spf13/cobra"
)

// pipelineFlags are shared by the root, run and plan commands.
type pipelineFlags struct {
	root      string
	filter    string
	buildType string
	jobs      int
	only      []string
	skip      []string
	dryRun    bool
}

func newRunCommand(app *App) *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline (default command)",
		Long: `Run the generate, build, lint, test and test-root stages in order.

The first stage that fails ends the run; buildtest exits with that tool's
exit code and prints nothing of its own.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPipeline(cmd, flags)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func (f *pipelineFlags) register(cmd *cobra.Command, withDryRun bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.root, "root", "", "repository root (default: located from the executable or working directory)")
	fs.StringVar(&f.filter, "filter", "", "secondary test filter passed as --gtest_filter (default \"*\")")
	fs.StringVar(&f.buildType, "build-type", "", "CMAKE_BUILD_TYPE (Debug, Release, RelWithDebInfo, MinSizeRel)")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "build parallelism passed to the build tool")
	fs.StringSliceVar(&f.only, "only", nil, "run only these stages (comma-separated)")
	fs.StringSliceVar(&f.skip, "skip", nil, "skip these stages (comma-separated)")
	if withDryRun {
		fs.BoolVar(&f.dryRun, "dry-run", false, "print the invocations without running them")
	}
}

// apply overlays explicitly set flags onto cfg.
func (f *pipelineFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("filter") {
		cfg.Tests.Secondary.Filter = f.filter
	}
	if fs.Changed("build-type") {
		cfg.BuildType = config.BuildType(f.buildType)
	}
	if fs.Changed("jobs") {
		cfg.Build.Jobs = f.jobs
	}
}

func (f *pipelineFlags) selection() (pipeline.Selection, error) {
	only, err := pipeline.ParseStageIDs(f.only)
	if err != nil {
		return pipeline.Selection{}, fmt.Errorf("--only: %w", err)
	}
	skip, err := pipeline.ParseStageIDs(f.skip)
	if err != nil {
		return pipeline.Selection{}, fmt.Errorf("--skip: %w", err)
	}
	return pipeline.Selection{Only: only, Skip: skip}, nil
}

// preparePipeline loads configuration, applies flags and resolves the root.
func (a *App) preparePipeline(cmd *cobra.Command, flags *pipelineFlags) (*pipeline.Planner, pipeline.Selection, error) {
	cfg, err := a.loadConfig(cmd.Context())
	if err != nil {
		return nil, pipeline.Selection{}, err
	}

	flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, pipeline.Selection{}, usageError(err)
	}

	sel, err := flags.selection()
	if err != nil {
		return nil, pipeline.Selection{}, usageError(newServiceError(err, issue.UnknownStageId))
	}
	if len(sel.Stages()) == 0 {
		return nil, pipeline.Selection{}, usageError(fmt.Errorf("--only and --skip leave no stage to run"))
	}

	root, err := a.Roots.Resolve(flags.root)
	if err != nil {
		return nil, pipeline.Selection{}, &ExitError{Code: runtime.ExitFailure, Err: newServiceError(err, classifyPipelineError(err))}
	}

	planner := pipeline.NewPlanner(cfg, root)
	planner.IO = a.ioContext()
	return planner, sel, nil
}

func (a *App) runPipeline(cmd *cobra.Command, flags *pipelineFlags) error {
	planner, sel, err := a.preparePipeline(cmd, flags)
	if err != nil {
		return err
	}

	if flags.dryRun {
		return a.printPlan(cmd, planner, sel)
	}

	runner := &pipeline.Runner{
		Planner:   planner,
		Executor:  a.Executor,
		Prober:    a.Prober,
		Reporter:  newStageReporter(a.stdout),
		Lock:      a.Lock,
		Selection: sel,
	}
	out := runner.Run(cmd.Context())

	if out.ExitCode.IsSuccess() {
		return nil
	}
	if out.Err == nil {
		return &ExitError{Code: out.ExitCode}
	}
	return &ExitError{Code: out.ExitCode, Err: newServiceError(out.Err, classifyPipelineError(out.Err))}
}

// newStageReporter prints stage labels to w in StageStyle.
func newStageReporter(w io.Writer) pipeline.Reporter {
	return &pipeline.WriterReporter{
		W:     w,
		Style: func(label string) string { return StageStyle.Render(label) },
	}
}
