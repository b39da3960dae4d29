// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/buildtest/buildtest/internal/config"
	"github.com/buildtest/buildtest/internal/runtime"
)

// TimeoutMultiplierEnv is set only in the primary test binary's environment.
const TimeoutMultiplierEnv = "CK_TIMEOUT_MULTIPLIER"

// Planner turns configuration into invocations.
type Planner struct {
	Config *config.Config
	// Root is the absolute repository root; every invocation runs there.
	Root string
	// IO is handed to every invocation.
	IO runtime.IOContext
}

// NewPlanner returns a planner writing to the process's standard streams.
func NewPlanner(cfg *config.Config, root string) *Planner {
	return &Planner{
		Config: cfg,
		Root:   root,
		IO:     runtime.IOContext{Stdout: os.Stdout, Stderr: os.Stderr, Stdin: os.Stdin},
	}
}

// BuildDir returns the absolute build directory.
func (p *Planner) BuildDir() string {
	return p.resolve(p.Config.Build.Dir)
}

// LintProbe returns the executable name whose presence on PATH enables lint.
func (p *Planner) LintProbe() string {
	return p.Config.Lint.Probe
}

// Invocations returns the collaborators stage id runs, in order. For
// StageTestRoot the tests root is resolved here, so a missing directory fails
// before anything is started.
func (p *Planner) Invocations(ctx context.Context, id StageID) ([]*runtime.ExecutionContext, error) {
	cfg := p.Config

	switch id {
	case StageGenerate:
		return []*runtime.ExecutionContext{p.script(ctx, cfg.Generator.Path)}, nil

	case StageBuild:
		buildDir := p.BuildDir()
		configure := p.binary(ctx, cfg.Build.ConfigureTool,
			"-H"+p.Root,
			"-B"+buildDir,
			"-DCMAKE_BUILD_TYPE="+string(cfg.BuildType),
			"-DCMAKE_C_COMPILER="+cfg.Toolchain.CCompiler,
			"-DCMAKE_CXX_COMPILER="+cfg.Toolchain.CXXCompiler,
		)
		args := append([]string{"-C", buildDir, "-j" + strconv.Itoa(cfg.Build.Jobs)}, cfg.Build.Targets...)
		compile := p.binary(ctx, cfg.Build.BuildTool, args...)
		return []*runtime.ExecutionContext{configure, compile}, nil

	case StageLint:
		return []*runtime.ExecutionContext{p.script(ctx, cfg.Lint.Wrapper)}, nil

	case StageTest:
		primary := p.binary(ctx, p.resolve(cfg.Tests.Primary.Binary))
		primary.Env[TimeoutMultiplierEnv] = strconv.Itoa(cfg.Tests.Primary.TimeoutMultiplier)
		return []*runtime.ExecutionContext{primary}, nil

	case StageTestRoot:
		testsRoot, err := ResolveTestsRoot(p.Root, cfg.Tests.Secondary.TestsDir)
		if err != nil {
			return nil, err
		}
		secondary := p.binary(ctx, p.resolve(cfg.Tests.Secondary.Binary),
			testsRoot,
			"--gtest_filter="+cfg.Tests.Secondary.Filter,
		)
		return []*runtime.ExecutionContext{secondary}, nil

	default:
		return nil, &InvalidStageIDError{Value: id}
	}
}

// binary builds a native invocation. Bare names are looked up on PATH.
func (p *Planner) binary(ctx context.Context, program string, args ...string) *runtime.ExecutionContext {
	ec := runtime.NewExecutionContext(ctx, program, args...)
	ec.WorkDir = p.Root
	ec.EnvFiles = p.Config.EnvFiles
	ec.IO = p.IO
	return ec
}

// script builds an invocation for a repository script, honouring
// scripts.runtime.
func (p *Planner) script(ctx context.Context, path string) *runtime.ExecutionContext {
	ec := p.binary(ctx, p.resolve(path))
	if p.Config.Scripts.Runtime == config.ScriptRuntimeVirtual {
		ec.Runtime = runtime.RuntimeTypeVirtual
	}
	return ec
}

// resolve anchors a repository-relative path at Root.
func (p *Planner) resolve(path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}
