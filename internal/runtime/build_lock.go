// SPDX-License-Identifier: MPL-2.0

package runtime

import "errors"

// LockFileName is the lock file created inside the build directory.
const LockFileName = ".buildtest.lock"

// ErrFlockUnavailable is returned by AcquireBuildLock on platforms without flock.
var ErrFlockUnavailable = errors.New("flock not available on this platform")
