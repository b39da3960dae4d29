// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package runtime

// BuildLock is a no-op outside Linux.
type BuildLock struct{}

// AcquireBuildLock returns ErrFlockUnavailable; callers run unlocked.
func AcquireBuildLock(string) (*BuildLock, error) {
	return nil, ErrFlockUnavailable
}

// Release is a no-op.
func (l *BuildLock) Release() {}
