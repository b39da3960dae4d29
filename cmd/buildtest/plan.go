// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/buildtest/buildtest/internal/pipeline"
	"github.com/buildtest/buildtest/internal/runtime"

	"github.com/spf13/cobra"
)

func newPlanCommand(app *App) *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the invocations the pipeline would make",
		Long: `Resolve the repository root and configuration, then print every command
each selected stage would run, with its stage-specific environment.
Nothing is executed.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			planner, sel, err := app.preparePipeline(cmd, flags)
			if err != nil {
				return err
			}
			return app.printPlan(cmd, planner, sel)
		},
	}
	flags.register(cmd, false)
	return cmd
}

// printPlan writes the invocations for every selected stage. A stage that
// cannot be planned (missing tests root) is reported and the plan exits 1,
// matching what run would do.
func (a *App) printPlan(cmd *cobra.Command, planner *pipeline.Planner, sel pipeline.Selection) error {
	w := a.stdout
	fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("root:"), planner.Root)
	fmt.Fprintf(w, "%s %s\n\n", SubtitleStyle.Render("build dir:"), planner.BuildDir())

	failed := false
	for _, stage := range sel.Stages() {
		fmt.Fprintln(w, StageStyle.Render(stage.Label))

		if stage.ID == pipeline.StageLint {
			probe := planner.LintProbe()
			path, ok := a.Prober.LookPath(probe)
			if !ok {
				fmt.Fprintf(w, "  %s\n", WarningStyle.Render(fmt.Sprintf("%s not found on PATH; stage skipped", probe)))
				continue
			}
			fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render(fmt.Sprintf("%s found at %s", probe, path)))
		}

		invocations, err := planner.Invocations(cmd.Context(), stage.ID)
		if err != nil {
			failed = true
			fmt.Fprintf(w, "  %s %s\n", ErrorStyle.Render("!"), formatErrorForDisplay(err, false))
			continue
		}
		for _, inv := range invocations {
			line := "  $ " + CmdStyle.Render(pipeline.FormatInvocation(inv))
			if inv.Runtime == runtime.RuntimeTypeVirtual {
				line += " " + SubtitleStyle.Render("(virtual shell)")
			}
			fmt.Fprintln(w, line)
		}
	}

	if failed {
		return &ExitError{Code: runtime.ExitFailure}
	}
	return nil
}
