// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown
// remediation guides for failures the orchestrator itself detects.
//
// Failures of the collaborating tools (generator, compiler, test binaries) are
// not described here: their own diagnostics are the only output users see.
package issue
