// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime interprets shell-script collaborators with mvdan/sh.
// Commands the script calls are still started as host processes.
type VirtualRuntime struct {
	// EnvBuilder builds the script environment. Nil means DefaultEnvBuilder.
	EnvBuilder EnvBuilder
}

// NewVirtualRuntime returns a virtual runtime with the default env builder.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{EnvBuilder: NewDefaultEnvBuilder()}
}

// Name returns "virtual".
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available always reports true; the interpreter is built in.
func (r *VirtualRuntime) Available() bool {
	return true
}

// Validate parses the script so syntax errors surface before anything runs.
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	_, err := r.parse(ctx)
	return err
}

// Execute interprets the script with ctx.Args as positional parameters.
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	prog, err := r.parse(ctx)
	if err != nil {
		return NewErrorResult(ExitFailure, err)
	}

	builder := r.EnvBuilder
	if builder == nil {
		builder = NewDefaultEnvBuilder()
	}
	env, err := builder.Build(ctx)
	if err != nil {
		return NewErrorResult(ExitFailure, fmt.Errorf("failed to build environment: %w", err))
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(EnvToSlice(env)...)),
		interp.StdIO(ctx.IO.Stdin, ctx.IO.Stdout, ctx.IO.Stderr),
		// "--" stops option parsing so "-v" style arguments stay positional.
		interp.Params(append([]string{"--"}, ctx.Args...)...),
	}
	if ctx.WorkDir != "" {
		opts = append(opts, interp.Dir(ctx.WorkDir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(ExitFailure, fmt.Errorf("failed to create interpreter: %w", err))
	}

	slog.Debug("interpret", "script", scriptPath(ctx.Program, ctx.WorkDir), "args", ctx.Args, "dir", ctx.WorkDir)

	if err := runner.Run(ctx.Context, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return NewExitCodeResult(ExitCode(status))
		}
		return NewErrorResult(ExitFailure, fmt.Errorf("script execution failed: %w", err))
	}
	return NewSuccessResult()
}

func (r *VirtualRuntime) parse(ctx *ExecutionContext) (*syntax.File, error) {
	path := scriptPath(ctx.Program, ctx.WorkDir)
	f, err := os.Open(path)
	if err != nil {
		return nil, &StartError{Program: ctx.Program, Err: err}
	}
	defer f.Close()

	prog, err := syntax.NewParser().Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("script syntax error: %w", err)
	}
	return prog, nil
}

// scriptPath anchors every relative script at workDir. Scripts are read by
// the interpreter, never looked up on PATH.
func scriptPath(program, workDir string) string {
	if filepath.IsAbs(program) || workDir == "" {
		return program
	}
	return filepath.Join(workDir, filepath.FromSlash(program))
}
