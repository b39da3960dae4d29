// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// SkipIfNoPOSIXShell skips tests that execute "#!/bin/sh" fakes.
func SkipIfNoPOSIXShell(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake collaborators are POSIX shell scripts")
	}
	if testing.Short() {
		t.Skip("skipping process-spawning test in short mode")
	}
}

// WriteExecutable writes a "#!/bin/sh" script at dir/name with mode 0755 and
// returns its path. name may contain slashes.
func WriteExecutable(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	mustWrite(t, path, "#!/bin/sh\n"+body+"\n", 0o755)
	return path
}

// FakeRepo creates a repository skeleton under a temp dir: CMakeLists.txt and
// a tests/ directory. It returns the root.
func FakeRepo(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	MustWriteFile(t, filepath.Join(root, "CMakeLists.txt"), "cmake_minimum_required(VERSION 3.18)\n")
	MustMkdirAll(t, filepath.Join(root, "tests"))
	return root
}

func mustWrite(t testing.TB, path, content string, perm os.FileMode) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	// WriteFile keeps the mode of an existing file; force it.
	if err := os.Chmod(path, perm); err != nil {
		t.Fatalf("failed to chmod %s: %v", path, err)
	}
}
