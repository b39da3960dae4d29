// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/buildtest/buildtest/internal/pipeline"

	"github.com/spf13/cobra"
)

func newStagesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the pipeline stages in execution order",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idStyle := CmdStyle.Width(12)
			for i, stage := range pipeline.Stages() {
				fmt.Fprintf(app.stdout, "%d. %s %s\n", i+1, idStyle.Render(string(stage.ID)), stage.Description)
			}
			return nil
		},
	}
}
