// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// NativeRuntime starts collaborators as host processes.
type NativeRuntime struct {
	// EnvBuilder builds the child environment. Nil means DefaultEnvBuilder.
	EnvBuilder EnvBuilder
}

// NewNativeRuntime returns a native runtime with the default env builder.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{EnvBuilder: NewDefaultEnvBuilder()}
}

// Name returns "native".
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available always reports true: os/exec works on every supported host.
func (r *NativeRuntime) Available() bool {
	return true
}

// Validate checks that a program was given.
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Program) == "" {
		return fmt.Errorf("no program to execute")
	}
	return nil
}

// Execute runs the program and waits for it to exit. Output streams straight
// to ctx.IO; nothing is captured or interpreted.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	if err := ctx.Context.Err(); err != nil {
		return NewErrorResult(ExitFailure, err)
	}

	env, err := r.envBuilder().Build(ctx)
	if err != nil {
		return NewErrorResult(ExitFailure, fmt.Errorf("failed to build environment: %w", err))
	}

	program := ResolveProgram(ctx.Program, ctx.WorkDir)
	cmd := exec.CommandContext(ctx.Context, program, ctx.Args...)
	cmd.Dir = ctx.WorkDir
	cmd.Env = EnvToSlice(env)
	cmd.Stdout = ctx.IO.Stdout
	cmd.Stderr = ctx.IO.Stderr
	cmd.Stdin = ctx.IO.Stdin

	slog.Debug("exec", "argv", append([]string{program}, ctx.Args...), "dir", ctx.WorkDir)

	return resultFromWait(ctx.Program, cmd.Run())
}

func (r *NativeRuntime) envBuilder() EnvBuilder {
	if r.EnvBuilder == nil {
		return NewDefaultEnvBuilder()
	}
	return r.EnvBuilder
}

// ResolveProgram anchors a relative program path that contains a separator
// (e.g. "tools/lint") at workDir. Bare names are left for PATH lookup and
// absolute paths are returned unchanged.
func ResolveProgram(program, workDir string) string {
	if filepath.IsAbs(program) || workDir == "" {
		return program
	}
	if !strings.ContainsRune(program, '/') && !strings.ContainsRune(program, filepath.Separator) {
		return program
	}
	return filepath.Join(workDir, filepath.FromSlash(program))
}
