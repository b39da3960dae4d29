// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// BuildTypeDebug is the CMake Debug configuration.
	BuildTypeDebug BuildType = "Debug"
	// BuildTypeRelease is the CMake Release configuration.
	BuildTypeRelease BuildType = "Release"
	// BuildTypeRelWithDebInfo is the CMake RelWithDebInfo configuration.
	BuildTypeRelWithDebInfo BuildType = "RelWithDebInfo"
	// BuildTypeMinSizeRel is the CMake MinSizeRel configuration.
	BuildTypeMinSizeRel BuildType = "MinSizeRel"

	// ScriptRuntimeNative runs generator and lint scripts as host processes.
	ScriptRuntimeNative ScriptRuntime = "native"
	// ScriptRuntimeVirtual runs them in the embedded mvdan/sh interpreter.
	ScriptRuntimeVirtual ScriptRuntime = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidBuildType is returned when a BuildType value is not recognized.
	ErrInvalidBuildType = errors.New("invalid build type")
	// ErrInvalidScriptRuntime is returned when a ScriptRuntime value is not recognized.
	ErrInvalidScriptRuntime = errors.New("invalid script runtime")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// BuildType is the value passed as CMAKE_BUILD_TYPE.
	BuildType string

	// ScriptRuntime selects how shell-script collaborators run.
	ScriptRuntime string

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// every field-level problem.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the buildtest configuration.
	Config struct {
		// BuildType is passed to CMake as CMAKE_BUILD_TYPE.
		BuildType BuildType `json:"build_type" mapstructure:"build_type"`
		// Toolchain selects the compilers handed to CMake.
		Toolchain ToolchainConfig `json:"toolchain" mapstructure:"toolchain"`
		// Build configures the configure and compile steps.
		Build BuildConfig `json:"build" mapstructure:"build"`
		// Generator configures the code generation stage.
		Generator GeneratorConfig `json:"generator" mapstructure:"generator"`
		// Lint configures the optional static analysis stage.
		Lint LintConfig `json:"lint" mapstructure:"lint"`
		// Tests configures both test stages.
		Tests TestsConfig `json:"tests" mapstructure:"tests"`
		// Scripts configures how script collaborators run.
		Scripts ScriptsConfig `json:"scripts" mapstructure:"scripts"`
		// EnvFiles lists dotenv files merged into every stage's environment.
		EnvFiles []string `json:"env_files" mapstructure:"env_files"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ToolchainConfig selects the compilers.
	ToolchainConfig struct {
		CCompiler   string `json:"c_compiler" mapstructure:"c_compiler"`
		CXXCompiler string `json:"cxx_compiler" mapstructure:"cxx_compiler"`
	}

	// BuildConfig configures CMake and the native build tool.
	BuildConfig struct {
		// Dir is the out-of-source build directory, relative to the root.
		Dir string `json:"dir" mapstructure:"dir"`
		// Jobs is the parallelism passed to the build tool as -j.
		Jobs int `json:"jobs" mapstructure:"jobs"`
		// Targets are built in one build tool invocation.
		Targets       []string `json:"targets" mapstructure:"targets"`
		ConfigureTool string   `json:"configure_tool" mapstructure:"configure_tool"`
		BuildTool     string   `json:"build_tool" mapstructure:"build_tool"`
	}

	// GeneratorConfig configures the code generation stage.
	GeneratorConfig struct {
		Path string `json:"path" mapstructure:"path"`
	}

	// LintConfig configures the static analysis stage.
	LintConfig struct {
		// Probe is looked up on PATH; the stage is skipped when it is absent.
		Probe string `json:"probe" mapstructure:"probe"`
		// Wrapper is the script actually invoked.
		Wrapper string `json:"wrapper" mapstructure:"wrapper"`
	}

	// TestsConfig configures both test stages.
	TestsConfig struct {
		Primary   PrimaryTestsConfig   `json:"primary" mapstructure:"primary"`
		Secondary SecondaryTestsConfig `json:"secondary" mapstructure:"secondary"`
	}

	// PrimaryTestsConfig configures the check-based test binary.
	PrimaryTestsConfig struct {
		Binary string `json:"binary" mapstructure:"binary"`
		// TimeoutMultiplier is exported to the binary as CK_TIMEOUT_MULTIPLIER.
		TimeoutMultiplier int `json:"timeout_multiplier" mapstructure:"timeout_multiplier"`
	}

	// SecondaryTestsConfig configures the gtest-based test binary.
	SecondaryTestsConfig struct {
		Binary string `json:"binary" mapstructure:"binary"`
		// TestsDir is canonicalised and passed as the first argument.
		TestsDir string `json:"tests_dir" mapstructure:"tests_dir"`
		// Filter is passed as --gtest_filter.
		Filter string `json:"filter" mapstructure:"filter"`
	}

	// ScriptsConfig configures script collaborators.
	ScriptsConfig struct {
		Runtime ScriptRuntime `json:"runtime" mapstructure:"runtime"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		BuildType: BuildTypeDebug,
		Toolchain: ToolchainConfig{
			CCompiler:   "clang",
			CXXCompiler: "clang++",
		},
		Build: BuildConfig{
			Dir:           "build",
			Jobs:          12,
			Targets:       []string{"tests", "TrezorCryptoTests"},
			ConfigureTool: "cmake",
			BuildTool:     "make",
		},
		Generator: GeneratorConfig{Path: "tools/generate-files"},
		Lint: LintConfig{
			Probe:   "clang-tidy",
			Wrapper: "tools/lint",
		},
		Tests: TestsConfig{
			Primary: PrimaryTestsConfig{
				Binary:            "build/trezor-crypto/crypto/tests/TrezorCryptoTests",
				TimeoutMultiplier: 4,
			},
			Secondary: SecondaryTestsConfig{
				Binary:   "build/tests/tests",
				TestsDir: "tests",
				Filter:   "*",
			},
		},
		Scripts:  ScriptsConfig{Runtime: ScriptRuntimeNative},
		EnvFiles: []string{},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// IsValid reports whether t is a CMake build type.
func (t BuildType) IsValid() (bool, []error) {
	switch t {
	case BuildTypeDebug, BuildTypeRelease, BuildTypeRelWithDebInfo, BuildTypeMinSizeRel:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q (must be Debug, Release, RelWithDebInfo or MinSizeRel)", ErrInvalidBuildType, t)}
	}
}

// IsValid reports whether r names a script runtime.
func (r ScriptRuntime) IsValid() (bool, []error) {
	switch r {
	case ScriptRuntimeNative, ScriptRuntimeVirtual:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q (must be native or virtual)", ErrInvalidScriptRuntime, r)}
	}
}

// IsValid reports whether c names a color scheme.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q (must be auto, dark or light)", ErrInvalidColorScheme, c)}
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks the constraints environment overrides and flags can break
// after the CUE schema has run.
func (c *Config) Validate() error {
	var errs []error

	collect := func(ok bool, fieldErrs []error) {
		if !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	collect(c.BuildType.IsValid())
	collect(c.Scripts.Runtime.IsValid())
	collect(c.UI.ColorScheme.IsValid())

	required := []struct {
		key, value string
	}{
		{"toolchain.c_compiler", c.Toolchain.CCompiler},
		{"toolchain.cxx_compiler", c.Toolchain.CXXCompiler},
		{"build.dir", c.Build.Dir},
		{"build.configure_tool", c.Build.ConfigureTool},
		{"build.build_tool", c.Build.BuildTool},
		{"generator.path", c.Generator.Path},
		{"lint.probe", c.Lint.Probe},
		{"lint.wrapper", c.Lint.Wrapper},
		{"tests.primary.binary", c.Tests.Primary.Binary},
		{"tests.secondary.binary", c.Tests.Secondary.Binary},
		{"tests.secondary.tests_dir", c.Tests.Secondary.TestsDir},
		{"tests.secondary.filter", c.Tests.Secondary.Filter},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", f.key))
		}
	}

	if c.Build.Jobs < 1 {
		errs = append(errs, fmt.Errorf("build.jobs must be at least 1, got %d", c.Build.Jobs))
	}
	if len(c.Build.Targets) == 0 {
		errs = append(errs, errors.New("build.targets must name at least one target"))
	}
	for i, target := range c.Build.Targets {
		if strings.TrimSpace(target) == "" {
			errs = append(errs, fmt.Errorf("build.targets[%d] must not be empty", i))
		}
	}
	if c.Tests.Primary.TimeoutMultiplier < 1 {
		errs = append(errs, fmt.Errorf("tests.primary.timeout_multiplier must be at least 1, got %d", c.Tests.Primary.TimeoutMultiplier))
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}
