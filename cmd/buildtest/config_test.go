// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buildtest/buildtest/internal/config"
	"github.com/buildtest/buildtest/internal/testutil"
)

func newConfigTestApp(t *testing.T) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Stdout: &stdout,
		Stderr: &stderr,
		Stdin:  strings.NewReader(""),
	})
	return app, &stdout, &stderr
}

func TestConfigDumpUsesConfigFlag(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ci.cue")
	testutil.MustWriteFile(t, path, "build: jobs: 6\ntests: secondary: filter: \"Nem.*\"\n")

	app, stdout, stderr := newConfigTestApp(t)
	if code := execute(t.Context(), app, []string{"--config", path, "config", "dump"}); code != 0 {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr)
	}

	out := stdout.String()
	for _, want := range []string{"jobs:           6", `filter:    "Nem.*"`, `build_type: "Debug"`} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShowInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.cue")
	testutil.MustWriteFile(t, path, "build: jobs: -1\n")

	app, _, stderr := newConfigTestApp(t)
	if code := execute(t.Context(), app, []string{"--config", path, "config", "show"}); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "failed to load configuration") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ci.cue")
	testutil.MustWriteFile(t, path, "scripts: runtime: \"virtual\"\n")

	app, stdout, _ := newConfigTestApp(t)
	if code := execute(t.Context(), app, []string{"--config", path, "config", "show"}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	out := stdout.String()
	if !strings.Contains(out, path) || !strings.Contains(out, "virtual") {
		t.Errorf("show output = %q", out)
	}
}

// Mutates the package-level config dir override; no t.Parallel.
func TestConfigInitAndPath(t *testing.T) {
	dir := t.TempDir()
	config.SetConfigDirOverride(dir)
	t.Cleanup(config.Reset)
	testutil.MustChdir(t, t.TempDir())

	app, stdout, stderr := newConfigTestApp(t)
	if code := execute(t.Context(), app, []string{"config", "init"}); code != 0 {
		t.Fatalf("init exit code = %d (stderr: %s)", code, stderr)
	}
	cfgPath := filepath.Join(dir, "config.cue")
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	stdout.Reset()
	if code := execute(t.Context(), app, []string{"config", "path"}); code != 0 {
		t.Fatalf("path exit code = %d", code)
	}
	if !strings.Contains(stdout.String(), "Active config file: "+cfgPath) {
		t.Errorf("path output = %q", stdout)
	}

	stdout.Reset()
	if code := execute(t.Context(), app, []string{"config", "init"}); code != 0 {
		t.Fatalf("second init exit code = %d", code)
	}
	if !strings.Contains(stdout.String(), "already exists") {
		t.Errorf("second init output = %q", stdout)
	}
}
