// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/buildtest/buildtest/internal/issue"
	"github.com/buildtest/buildtest/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "buildtest"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is looked up in the working directory when the user
	// config directory has no config file.
	LocalConfigFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides (BUILDTEST_BUILD_JOBS=8).
	EnvPrefix = "BUILDTEST"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the buildtest configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Locate returns the config file Load would read, or "" when defaults apply.
// An explicit ConfigFilePath that does not exist is an error.
func Locate(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'buildtest config show' to see the effective configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(cuePath) {
		return cuePath, nil
	}

	localPath := LocalConfigFileName
	if opts.WorkDir != "" {
		localPath = filepath.Join(opts.WorkDir, LocalConfigFileName)
	}
	if fileExists(localPath) {
		return localPath, nil
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := Locate(opts)
	if err != nil {
		return nil, "", err
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'buildtest config dump' for a complete valid file").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(describeSource(resolvedPath)).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for typos").
			WithSuggestion("Run 'buildtest config show' to see the effective configuration").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("build_type", defaults.BuildType)
	v.SetDefault("toolchain.c_compiler", defaults.Toolchain.CCompiler)
	v.SetDefault("toolchain.cxx_compiler", defaults.Toolchain.CXXCompiler)
	v.SetDefault("build.dir", defaults.Build.Dir)
	v.SetDefault("build.jobs", defaults.Build.Jobs)
	v.SetDefault("build.targets", defaults.Build.Targets)
	v.SetDefault("build.configure_tool", defaults.Build.ConfigureTool)
	v.SetDefault("build.build_tool", defaults.Build.BuildTool)
	v.SetDefault("generator.path", defaults.Generator.Path)
	v.SetDefault("lint.probe", defaults.Lint.Probe)
	v.SetDefault("lint.wrapper", defaults.Lint.Wrapper)
	v.SetDefault("tests.primary.binary", defaults.Tests.Primary.Binary)
	v.SetDefault("tests.primary.timeout_multiplier", defaults.Tests.Primary.TimeoutMultiplier)
	v.SetDefault("tests.secondary.binary", defaults.Tests.Secondary.Binary)
	v.SetDefault("tests.secondary.tests_dir", defaults.Tests.Secondary.TestsDir)
	v.SetDefault("tests.secondary.filter", defaults.Tests.Secondary.Filter)
	v.SetDefault("scripts.runtime", defaults.Scripts.Runtime)
	v.SetDefault("env_files", defaults.EnvFiles)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

func describeSource(path string) string {
	if path == "" {
		return "defaults and environment"
	}
	return path
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// Config decodes to map[string]any with Concrete(false) because every field
// is optional and the defaults already live in v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.Validate[map[string]any](configSchema, data, "#Config",
		cueutil.WithConcrete(false),
		cueutil.WithFilename(path),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file into dir (the user
// config directory when empty). It returns the path and whether the file was
// created; an existing file is left untouched.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration that
// validates against #Config.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// buildtest configuration file\n")
	sb.WriteString("// Relative paths resolve against the repository root.\n\n")

	fmt.Fprintf(&sb, "build_type: %q\n", cfg.BuildType)

	sb.WriteString("\ntoolchain: {\n")
	fmt.Fprintf(&sb, "\tc_compiler:   %q\n", cfg.Toolchain.CCompiler)
	fmt.Fprintf(&sb, "\tcxx_compiler: %q\n", cfg.Toolchain.CXXCompiler)
	sb.WriteString("}\n")

	sb.WriteString("\nbuild: {\n")
	fmt.Fprintf(&sb, "\tdir:            %q\n", cfg.Build.Dir)
	fmt.Fprintf(&sb, "\tjobs:           %d\n", cfg.Build.Jobs)
	fmt.Fprintf(&sb, "\ttargets:        %s\n", cueStringList(cfg.Build.Targets))
	fmt.Fprintf(&sb, "\tconfigure_tool: %q\n", cfg.Build.ConfigureTool)
	fmt.Fprintf(&sb, "\tbuild_tool:     %q\n", cfg.Build.BuildTool)
	sb.WriteString("}\n")

	sb.WriteString("\ngenerator: {\n")
	fmt.Fprintf(&sb, "\tpath: %q\n", cfg.Generator.Path)
	sb.WriteString("}\n")

	sb.WriteString("\nlint: {\n")
	fmt.Fprintf(&sb, "\tprobe:   %q\n", cfg.Lint.Probe)
	fmt.Fprintf(&sb, "\twrapper: %q\n", cfg.Lint.Wrapper)
	sb.WriteString("}\n")

	sb.WriteString("\ntests: {\n")
	sb.WriteString("\tprimary: {\n")
	fmt.Fprintf(&sb, "\t\tbinary:             %q\n", cfg.Tests.Primary.Binary)
	fmt.Fprintf(&sb, "\t\ttimeout_multiplier: %d\n", cfg.Tests.Primary.TimeoutMultiplier)
	sb.WriteString("\t}\n")
	sb.WriteString("\tsecondary: {\n")
	fmt.Fprintf(&sb, "\t\tbinary:    %q\n", cfg.Tests.Secondary.Binary)
	fmt.Fprintf(&sb, "\t\ttests_dir: %q\n", cfg.Tests.Secondary.TestsDir)
	fmt.Fprintf(&sb, "\t\tfilter:    %q\n", cfg.Tests.Secondary.Filter)
	sb.WriteString("\t}\n")
	sb.WriteString("}\n")

	sb.WriteString("\nscripts: {\n")
	fmt.Fprintf(&sb, "\truntime: %q\n", cfg.Scripts.Runtime)
	sb.WriteString("}\n")

	if len(cfg.EnvFiles) > 0 {
		fmt.Fprintf(&sb, "\nenv_files: %s\n", cueStringList(cfg.EnvFiles))
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func cueStringList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
