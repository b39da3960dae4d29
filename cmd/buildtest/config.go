// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/buildtest/buildtest/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `buildtest config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage buildtest configuration",
		Long: `Manage buildtest configuration.

Configuration is read from the first of:
  - the --config file
  - Linux: ~/.config/buildtest/config.cue
    macOS: ~/Library/Application Support/buildtest/config.cue
    Windows: %APPDATA%\buildtest\config.cue
  - ./buildtest.cue
and BUILDTEST_* environment variables override single keys
(BUILDTEST_BUILD_JOBS=8).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			path, _ := config.Locate(app.loadOptions())
			showConfig(app, cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			active, err := config.Locate(app.loadOptions())
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			if active == "" {
				active = "(none, using defaults)"
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Active config file: %s\n", active)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App, cfg *config.Config, path string) {
	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	}
	fmt.Fprintln(w)

	rows := []struct{ key, value string }{
		{"build_type", string(cfg.BuildType)},
		{"toolchain.c_compiler", cfg.Toolchain.CCompiler},
		{"toolchain.cxx_compiler", cfg.Toolchain.CXXCompiler},
		{"build.dir", cfg.Build.Dir},
		{"build.jobs", strconv.Itoa(cfg.Build.Jobs)},
		{"build.targets", strings.Join(cfg.Build.Targets, ", ")},
		{"build.configure_tool", cfg.Build.ConfigureTool},
		{"build.build_tool", cfg.Build.BuildTool},
		{"generator.path", cfg.Generator.Path},
		{"lint.probe", cfg.Lint.Probe},
		{"lint.wrapper", cfg.Lint.Wrapper},
		{"tests.primary.binary", cfg.Tests.Primary.Binary},
		{"tests.primary.timeout_multiplier", strconv.Itoa(cfg.Tests.Primary.TimeoutMultiplier)},
		{"tests.secondary.binary", cfg.Tests.Secondary.Binary},
		{"tests.secondary.tests_dir", cfg.Tests.Secondary.TestsDir},
		{"tests.secondary.filter", cfg.Tests.Secondary.Filter},
		{"scripts.runtime", string(cfg.Scripts.Runtime)},
		{"env_files", strings.Join(cfg.EnvFiles, ", ")},
		{"ui.color_scheme", string(cfg.UI.ColorScheme)},
		{"ui.verbose", strconv.FormatBool(cfg.UI.Verbose)},
	}
	for _, row := range rows {
		value := valueStyle.Render(row.value)
		if row.value == "" {
			value = SubtitleStyle.Render("(none)")
		}
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render(row.key), value)
	}
}
