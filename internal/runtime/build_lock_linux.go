// SPDX-License-Identifier: MPL-2.0

//go:build linux

package runtime

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// BuildLock is a blocking exclusive flock on a file inside the build
// directory. It serialises buildtest processes sharing one build tree; the
// kernel drops the lock if the holder crashes, so an orphaned file is harmless.
type BuildLock struct {
	file *os.File
}

// AcquireBuildLock creates buildDir if needed and blocks until the exclusive
// lock on buildDir/LockFileName is held.
func AcquireBuildLock(buildDir string) (*BuildLock, error) {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, fmt.Errorf("create build directory %s: %w", buildDir, err)
	}
	return acquireBuildLockAt(filepath.Join(buildDir, LockFileName))
}

func acquireBuildLockAt(path string) (*BuildLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	return &BuildLock{file: f}, nil
}

// Release drops the lock. Calling it more than once is a no-op.
func (l *BuildLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		slog.Debug("flock unlock failed", "error", err)
	}
	if err := l.file.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}
	l.file = nil
}
