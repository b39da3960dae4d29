// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// Runtime type constants.
const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"
)

type (
	// ExecutionContext contains everything needed to run one collaborator.
	ExecutionContext struct {
		// Context cancels the child process (SIGKILL via exec.CommandContext).
		Context context.Context
		// Program is the executable or script to run. Relative paths containing
		// a separator are resolved against WorkDir; bare names use PATH.
		Program string
		// Args are passed verbatim, without shell interpretation.
		Args []string
		// WorkDir is the child's working directory.
		WorkDir string
		// Env holds stage-specific variables. They win over every other source.
		Env map[string]string
		// EnvFiles are dotenv files merged over the host environment. A trailing
		// "?" marks a file optional. Relative paths resolve against WorkDir.
		EnvFiles []string
		// Runtime selects the runtime used by Registry.Execute.
		Runtime RuntimeType
		// IO holds the child's standard streams.
		IO IOContext
	}

	// IOContext holds the standard streams handed to a collaborator.
	IOContext struct {
		Stdout io.Writer
		Stderr io.Writer
		Stdin  io.Reader
	}

	// Runtime executes a collaborator.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Available reports whether the runtime can run on this host.
		Available() bool
		// Validate checks the invocation before it runs.
		Validate(ctx *ExecutionContext) error
		// Execute runs the invocation and blocks until it exits.
		Execute(ctx *ExecutionContext) *Result
	}

	// RuntimeType identifies a runtime.
	//
	//nolint:revive // RuntimeType reads better than Type at call sites
	RuntimeType string

	// Registry maps runtime types to implementations.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewExecutionContext returns a context for program with the process's
// standard streams and the native runtime selected.
func NewExecutionContext(ctx context.Context, program string, args ...string) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecutionContext{
		Context: ctx,
		Program: program,
		Args:    args,
		Env:     make(map[string]string),
		Runtime: RuntimeTypeNative,
		IO: IOContext{
			Stdout: os.Stdout,
			Stderr: os.Stderr,
			Stdin:  os.Stdin,
		},
	}
}

// Argv returns the program followed by its arguments.
func (c *ExecutionContext) Argv() []string {
	return append([]string{c.Program}, c.Args...)
}

// Validate checks the fields every runtime relies on.
func (c *ExecutionContext) Validate() error {
	if c.Program == "" {
		return fmt.Errorf("no program to execute")
	}
	if ok, errs := c.Runtime.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{runtimes: make(map[RuntimeType]Runtime)}
}

// NewDefaultRegistry returns a registry with the native and virtual runtimes.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RuntimeTypeNative, NewNativeRuntime())
	r.Register(RuntimeTypeVirtual, NewVirtualRuntime())
	return r
}

// Register adds or replaces a runtime.
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns the runtime registered for typ.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("runtime '%s' not registered", typ)
	}
	return rt, nil
}

// Available lists the registered runtimes usable on this host, sorted.
func (r *Registry) Available() []RuntimeType {
	var types []RuntimeType
	for _, typ := range slices.Sorted(maps.Keys(r.runtimes)) {
		if r.runtimes[typ].Available() {
			types = append(types, typ)
		}
	}
	return types
}

// Execute runs ctx with the runtime it selects.
func (r *Registry) Execute(ctx *ExecutionContext) *Result {
	if err := ctx.Validate(); err != nil {
		return NewErrorResult(ExitFailure, err)
	}

	rt, err := r.Get(ctx.Runtime)
	if err != nil {
		return NewErrorResult(ExitFailure, err)
	}

	if !rt.Available() {
		return NewErrorResult(ExitFailure, fmt.Errorf("runtime '%s' is not available on this system", rt.Name()))
	}

	if err := rt.Validate(ctx); err != nil {
		if errors.Is(err, ErrStartFailed) {
			return NewErrorResult(ExitNotFound, err)
		}
		return NewErrorResult(ExitFailure, err)
	}

	return rt.Execute(ctx)
}

// EnvToSlice converts env to sorted KEY=VALUE pairs.
func EnvToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, k+"="+env[k])
	}
	return out
}
