// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema.
//
// Callers embed a schema holding a root definition (for example #Config),
// hand the user's bytes to Validate, and receive either the decoded value or
// an error whose lines carry JSON-path locations:
//
//	buildtest.cue: build.jobs: invalid value 0 (out of bound >=1)
package cueutil
