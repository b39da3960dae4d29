// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

type stubRuntime struct {
	name        string
	available   bool
	validateErr error
	result      *Result
	calls       int
}

func (s *stubRuntime) Name() string                     { return s.name }
func (s *stubRuntime) Available() bool                  { return s.available }
func (s *stubRuntime) Validate(*ExecutionContext) error { return s.validateErr }
func (s *stubRuntime) Execute(*ExecutionContext) *Result {
	s.calls++
	return s.result
}

func TestNewExecutionContext(t *testing.T) {
	t.Parallel()

	ctx := NewExecutionContext(context.Background(), "make", "-C", "build")

	if ctx.Runtime != RuntimeTypeNative {
		t.Errorf("Runtime = %q, want %q", ctx.Runtime, RuntimeTypeNative)
	}
	if ctx.Env == nil {
		t.Error("Env should be initialised")
	}
	if got, want := ctx.Argv(), []string{"make", "-C", "build"}; !slices.Equal(got, want) {
		t.Errorf("Argv() = %v, want %v", got, want)
	}
	if err := ctx.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestExecutionContextValidate(t *testing.T) {
	t.Parallel()

	empty := NewExecutionContext(context.Background(), "")
	if err := empty.Validate(); err == nil {
		t.Error("Validate() should reject an empty program")
	}

	bad := NewExecutionContext(context.Background(), "make")
	bad.Runtime = "container"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidRuntimeType) {
		t.Errorf("Validate() = %v, want ErrInvalidRuntimeType", err)
	}
}

func TestRegistryExecute(t *testing.T) {
	t.Parallel()

	t.Run("dispatches to selected runtime", func(t *testing.T) {
		t.Parallel()
		stub := &stubRuntime{name: "native", available: true, result: NewExitCodeResult(4)}
		r := NewRegistry()
		r.Register(RuntimeTypeNative, stub)

		res := r.Execute(NewExecutionContext(context.Background(), "make"))
		if res.ExitCode != 4 || stub.calls != 1 {
			t.Errorf("ExitCode = %d calls = %d, want 4 and 1", res.ExitCode, stub.calls)
		}
	})

	t.Run("unregistered runtime", func(t *testing.T) {
		t.Parallel()
		res := NewRegistry().Execute(NewExecutionContext(context.Background(), "make"))
		if res.ExitCode != ExitFailure || res.Error == nil {
			t.Errorf("got %+v, want failure with error", res)
		}
	})

	t.Run("unavailable runtime", func(t *testing.T) {
		t.Parallel()
		stub := &stubRuntime{name: "native"}
		r := NewRegistry()
		r.Register(RuntimeTypeNative, stub)

		res := r.Execute(NewExecutionContext(context.Background(), "make"))
		if res.ExitCode != ExitFailure || stub.calls != 0 {
			t.Errorf("got %+v calls=%d, want failure without execution", res, stub.calls)
		}
	})

	t.Run("start validation failure maps to 127", func(t *testing.T) {
		t.Parallel()
		stub := &stubRuntime{
			name:        "virtual",
			available:   true,
			validateErr: &StartError{Program: "gen.sh", Err: errors.New("no such file")},
		}
		r := NewRegistry()
		r.Register(RuntimeTypeVirtual, stub)

		ctx := NewExecutionContext(context.Background(), "gen.sh")
		ctx.Runtime = RuntimeTypeVirtual
		res := r.Execute(ctx)
		if res.ExitCode != ExitNotFound || stub.calls != 0 {
			t.Errorf("got %+v calls=%d, want 127 without execution", res, stub.calls)
		}
	})

	t.Run("other validation failure maps to 1", func(t *testing.T) {
		t.Parallel()
		stub := &stubRuntime{name: "native", available: true, validateErr: errors.New("bad")}
		r := NewRegistry()
		r.Register(RuntimeTypeNative, stub)

		if res := r.Execute(NewExecutionContext(context.Background(), "make")); res.ExitCode != ExitFailure {
			t.Errorf("ExitCode = %d, want %d", res.ExitCode, ExitFailure)
		}
	})
}

func TestRegistryAvailable(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(RuntimeTypeVirtual, &stubRuntime{name: "virtual", available: true})
	r.Register(RuntimeTypeNative, &stubRuntime{name: "native", available: true})
	r.Register("other", &stubRuntime{name: "other"})

	want := []RuntimeType{RuntimeTypeNative, RuntimeTypeVirtual}
	if got := r.Available(); !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("Get(missing) should fail")
	}
}

func TestNewDefaultRegistry(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()
	for _, typ := range []RuntimeType{RuntimeTypeNative, RuntimeTypeVirtual} {
		rt, err := r.Get(typ)
		if err != nil {
			t.Fatalf("Get(%q) = %v", typ, err)
		}
		if rt.Name() != string(typ) {
			t.Errorf("Name() = %q, want %q", rt.Name(), typ)
		}
	}
}

func TestEnvToSlice(t *testing.T) {
	t.Parallel()

	got := EnvToSlice(map[string]string{"B": "2", "A": "1", "C": ""})
	want := []string{"A=1", "B=2", "C="}
	if !slices.Equal(got, want) {
		t.Errorf("EnvToSlice() = %v, want %v", got, want)
	}
}

func TestResolveProgram(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/repo")
	abs := filepath.FromSlash("/usr/bin/cmake")

	tests := []struct {
		name    string
		program string
		workDir string
		want    string
	}{
		{"bare name stays for PATH", "cmake", root, "cmake"},
		{"relative path anchored", "tools/doxygen_generate_files.sh", root, filepath.Join(root, "tools", "doxygen_generate_files.sh")},
		{"absolute unchanged", abs, root, abs},
		{"no workdir", "tools/lint", "", "tools/lint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveProgram(tt.program, tt.workDir); got != tt.want {
				t.Errorf("ResolveProgram(%q, %q) = %q, want %q", tt.program, tt.workDir, got, tt.want)
			}
		})
	}
}

func TestRuntimeTypeIsValid(t *testing.T) {
	t.Parallel()

	for _, typ := range []RuntimeType{RuntimeTypeNative, RuntimeTypeVirtual} {
		if ok, _ := typ.IsValid(); !ok {
			t.Errorf("%q should be valid", typ)
		}
	}

	ok, errs := RuntimeType("container").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidRuntimeType) {
		t.Errorf("container: ok=%v errs=%v", ok, errs)
	}
}
