// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buildtest/buildtest/internal/testutil"
)

func newNativeContext(t *testing.T, dir, program string, args ...string) (*ExecutionContext, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	ctx := NewExecutionContext(t.Context(), program, args...)
	ctx.WorkDir = dir
	ctx.IO = IOContext{Stdout: &out, Stderr: &out, Stdin: strings.NewReader("")}
	return ctx, &out
}

func TestNativeRuntimeExitCodes(t *testing.T) {
	testutil.SkipIfNoPOSIXShell(t)
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteExecutable(t, dir, "ok.sh", "exit 0")
	testutil.WriteExecutable(t, dir, "fail.sh", "exit 3")

	rt := NewNativeRuntime()

	ctx, _ := newNativeContext(t, dir, "./ok.sh")
	if res := rt.Execute(ctx); !res.Success() {
		t.Errorf("ok.sh: %+v", res)
	}

	ctx, _ = newNativeContext(t, dir, "./fail.sh")
	if res := rt.Execute(ctx); res.ExitCode != 3 || res.Error != nil {
		t.Errorf("fail.sh: %+v, want exit 3 without error", res)
	}
}

func TestNativeRuntimeArgsAndEnv(t *testing.T) {
	testutil.SkipIfNoPOSIXShell(t)
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteExecutable(t, dir, "bin/echo.sh", `printf '%s|' "$@"; printf 'M=%s\n' "$MULT"`)

	ctx, out := newNativeContext(t, dir, "bin/echo.sh", "--gtest_filter=*", "two words")
	ctx.Env["MULT"] = "4"

	res := NewNativeRuntime().Execute(ctx)
	if !res.Success() {
		t.Fatalf("Execute() = %+v", res)
	}
	if got, want := out.String(), "--gtest_filter=*|two words|M=4\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNativeRuntimeWorkDir(t *testing.T) {
	testutil.SkipIfNoPOSIXShell(t)
	t.Parallel()

	dir := t.TempDir()
	script := testutil.WriteExecutable(t, dir, "pwd.sh", "pwd")

	ctx, out := newNativeContext(t, dir, script)
	if res := NewNativeRuntime().Execute(ctx); !res.Success() {
		t.Fatalf("Execute() = %+v", res)
	}
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := filepath.EvalSymlinks(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

func TestNativeRuntimeMissingProgram(t *testing.T) {
	t.Parallel()

	ctx, _ := newNativeContext(t, t.TempDir(), "./does-not-exist")
	res := NewNativeRuntime().Execute(ctx)

	if res.ExitCode != ExitNotFound {
		t.Errorf("ExitCode = %d, want %d", res.ExitCode, ExitNotFound)
	}
	if !errors.Is(res.Error, ErrStartFailed) {
		t.Errorf("Error = %v, want ErrStartFailed", res.Error)
	}
}

func TestNativeRuntimeCancelledContext(t *testing.T) {
	t.Parallel()

	cctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctx, _ := newNativeContext(t, t.TempDir(), "true")
	ctx.Context = cctx
	res := NewNativeRuntime().Execute(ctx)
	if res.ExitCode != ExitFailure || !errors.Is(res.Error, context.Canceled) {
		t.Errorf("Execute() = %+v, want cancellation failure", res)
	}
}

func TestNativeRuntimeEnvFileError(t *testing.T) {
	t.Parallel()

	ctx, _ := newNativeContext(t, t.TempDir(), "true")
	ctx.EnvFiles = []string{"missing.env"}
	res := NewNativeRuntime().Execute(ctx)
	if res.ExitCode != ExitFailure || res.Error == nil {
		t.Errorf("Execute() = %+v, want env failure", res)
	}
}
