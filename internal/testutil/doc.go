// SPDX-License-Identifier: MPL-2.0

// Package testutil holds test helpers that fail the test on setup errors:
// environment and directory management (MustSetenv, MustChdir, MustMkdirAll)
// and fake collaborators (WriteExecutable, FakeRepo).
package testutil
