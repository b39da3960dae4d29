// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buildtest/buildtest/internal/testutil"
)

func newVirtualContext(t *testing.T, dir, program string, args ...string) (*ExecutionContext, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	ctx := NewExecutionContext(t.Context(), program, args...)
	ctx.WorkDir = dir
	ctx.Runtime = RuntimeTypeVirtual
	ctx.IO = IOContext{Stdout: &out, Stderr: &out, Stdin: strings.NewReader("")}
	return ctx, &out
}

func TestVirtualRuntimeExecute(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "tools", "gen.sh"), `echo "gen $1 $GEN_MODE"`+"\n")

	ctx, out := newVirtualContext(t, dir, "tools/gen.sh", "-v")
	ctx.Env["GEN_MODE"] = "docs"

	res := NewVirtualRuntime().Execute(ctx)
	if !res.Success() {
		t.Fatalf("Execute() = %+v", res)
	}
	if got, want := out.String(), "gen -v docs\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestVirtualRuntimeExitStatus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "lint.sh"), "exit 5\n")

	ctx, _ := newVirtualContext(t, dir, "lint.sh")
	res := NewVirtualRuntime().Execute(ctx)
	if res.ExitCode != 5 || res.Error != nil {
		t.Errorf("Execute() = %+v, want exit 5 without error", res)
	}
}

func TestVirtualRuntimeValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "broken.sh"), "if then fi (\n")
	rt := NewVirtualRuntime()

	ctx, _ := newVirtualContext(t, dir, "broken.sh")
	if err := rt.Validate(ctx); err == nil || errors.Is(err, ErrStartFailed) {
		t.Errorf("Validate(broken) = %v, want syntax error", err)
	}

	ctx, _ = newVirtualContext(t, dir, "missing.sh")
	if err := rt.Validate(ctx); !errors.Is(err, ErrStartFailed) {
		t.Errorf("Validate(missing) = %v, want ErrStartFailed", err)
	}
}

func TestRegistryVirtualMissingScript(t *testing.T) {
	t.Parallel()

	ctx, _ := newVirtualContext(t, t.TempDir(), "tools/absent.sh")
	res := NewDefaultRegistry().Execute(ctx)
	if res.ExitCode != ExitNotFound {
		t.Errorf("ExitCode = %d, want %d", res.ExitCode, ExitNotFound)
	}
}

func TestScriptPath(t *testing.T) {
	t.Parallel()

	work := filepath.Join(string(filepath.Separator), "src", "repo")
	abs := filepath.Join(string(filepath.Separator), "opt", "lint.sh")
	tests := []struct {
		program, workDir, want string
	}{
		{"lint.sh", work, filepath.Join(work, "lint.sh")},
		{"tools/gen.sh", work, filepath.Join(work, "tools", "gen.sh")},
		{abs, work, abs},
		{"lint.sh", "", "lint.sh"},
	}

	for _, tt := range tests {
		if got := scriptPath(tt.program, tt.workDir); got != tt.want {
			t.Errorf("scriptPath(%q, %q) = %q, want %q", tt.program, tt.workDir, got, tt.want)
		}
	}
}
