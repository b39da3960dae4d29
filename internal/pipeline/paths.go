// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/buildtest/buildtest/internal/issue"
)

// RootMarker identifies a repository root.
const RootMarker = "CMakeLists.txt"

var (
	// ErrTestsRootNotFound is returned when the tests directory is missing or
	// is not a directory.
	ErrTestsRootNotFound = errors.New("tests root not found")
	// ErrRootNotFound is returned when an explicit --root is not a directory.
	ErrRootNotFound = errors.New("repository root not found")
)

// RootFinder locates the repository root.
type RootFinder struct {
	// Executable returns the running binary's path. Nil means os.Executable.
	Executable func() (string, error)
	// Getwd returns the working directory. Nil means os.Getwd.
	Getwd func() (string, error)
}

// Resolve returns, in order of preference: explicit made absolute; the parent
// of the executable's directory when it holds RootMarker (a binary installed
// under tools/); the nearest ancestor of the working directory holding
// RootMarker; the working directory.
func (f RootFinder) Resolve(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err == nil && isDir(abs) {
			return abs, nil
		}
		if err == nil {
			err = fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, abs)
		}
		return "", issue.NewErrorContext().
			WithOperation("resolve repository root").
			WithResource(explicit).
			WithSuggestion("Pass --root the directory containing " + RootMarker).
			Wrap(err).
			BuildError()
	}

	if root, ok := f.fromExecutable(); ok {
		slog.Debug("root resolved from executable", "root", root)
		return root, nil
	}

	getwd := f.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}
	wd, err := getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for dir := wd; ; dir = filepath.Dir(dir) {
		if fileExists(filepath.Join(dir, RootMarker)) {
			slog.Debug("root resolved from working directory", "root", dir)
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	slog.Debug("no "+RootMarker+" found; using working directory", "root", wd)
	return wd, nil
}

func (f RootFinder) fromExecutable() (string, bool) {
	executable := f.Executable
	if executable == nil {
		executable = os.Executable
	}
	exe, err := executable()
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	candidate := filepath.Dir(filepath.Dir(exe))
	if !fileExists(filepath.Join(candidate, RootMarker)) {
		return "", false
	}
	return candidate, true
}

// ResolveTestsRoot returns the canonical absolute path of root/testsDir with
// every symlink evaluated.
func ResolveTestsRoot(root, testsDir string) (string, error) {
	path := filepath.FromSlash(testsDir)
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	canonical, err := canonicalDir(path)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("resolve tests root").
			WithResource(path).
			WithSuggestion("Check that the tests directory exists in the repository").
			WithSuggestion("Set tests.secondary.tests_dir if the suite lives elsewhere").
			Wrap(err).
			BuildError()
	}
	return canonical, nil
}

func canonicalDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTestsRootNotFound, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTestsRootNotFound, err)
	}
	if !isDir(resolved) {
		return "", fmt.Errorf("%w: %s is not a directory", ErrTestsRootNotFound, resolved)
	}
	return resolved, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
