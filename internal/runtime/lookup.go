// SPDX-License-Identifier: MPL-2.0

package runtime

import "os/exec"

type (
	// Prober answers whether a tool is reachable on the execution path.
	Prober interface {
		LookPath(name string) (string, bool)
	}

	// PathProber resolves names with exec.LookPath against the process PATH.
	PathProber struct{}
)

// LookPath returns the resolved path and true when name is on PATH.
func (PathProber) LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
