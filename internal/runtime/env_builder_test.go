// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/buildtest/buildtest/internal/testutil"
)

func TestDefaultEnvBuilderPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "first.env"), "FROM_FILE=first\nSHARED=file\n")
	testutil.MustWriteFile(t, filepath.Join(dir, "second.env"), "FROM_FILE=second\n")

	b := &DefaultEnvBuilder{Environ: func() []string {
		return []string{"HOST=1", "SHARED=host", "FROM_FILE=host", "=ignored", "broken"}
	}}

	ctx := NewExecutionContext(context.Background(), "tests")
	ctx.WorkDir = dir
	ctx.EnvFiles = []string{"first.env", "second.env"}
	ctx.Env["SHARED"] = "stage"

	env, err := b.Build(ctx)
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	want := map[string]string{"HOST": "1", "SHARED": "stage", "FROM_FILE": "second"}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("env[%s] = %q, want %q", k, env[k], v)
		}
	}
	if _, ok := env["broken"]; ok {
		t.Error("entries without '=' should be skipped")
	}
}

func TestDefaultEnvBuilderDoesNotLeakStageEnv(t *testing.T) {
	t.Parallel()

	b := &DefaultEnvBuilder{Environ: func() []string { return nil }}
	primary := NewExecutionContext(context.Background(), "TrezorCryptoTests")
	primary.Env["CK_TIMEOUT_MULTIPLIER"] = "4"
	if _, err := b.Build(primary); err != nil {
		t.Fatal(err)
	}

	env, err := b.Build(NewExecutionContext(context.Background(), "tests"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := env["CK_TIMEOUT_MULTIPLIER"]; ok {
		t.Error("stage env leaked into another invocation")
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "ci.env"), "# comment\nCC=clang\nQUOTED=\"a b\"\n")

	t.Run("relative to base dir", func(t *testing.T) {
		t.Parallel()
		env := map[string]string{}
		if err := LoadEnvFile(env, "ci.env", dir); err != nil {
			t.Fatalf("LoadEnvFile() = %v", err)
		}
		if env["CC"] != "clang" || env["QUOTED"] != "a b" {
			t.Errorf("env = %v", env)
		}
	})

	t.Run("missing optional file", func(t *testing.T) {
		t.Parallel()
		env := map[string]string{}
		if err := LoadEnvFile(env, "absent.env?", dir); err != nil {
			t.Errorf("LoadEnvFile(optional) = %v, want nil", err)
		}
	})

	t.Run("missing required file", func(t *testing.T) {
		t.Parallel()
		env := map[string]string{}
		if err := LoadEnvFile(env, "absent.env", dir); err == nil {
			t.Error("LoadEnvFile(required) should fail")
		}
	})
}
