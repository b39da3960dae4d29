// SPDX-License-Identifier: MPL-2.0

// Package pipeline drives the five build-and-test stages in a fixed order:
// generate, build, lint, test and test-root. Stages run one at a time and the
// first non-zero exit ends the run with that exit code; later stages never
// start.
//
// A Planner turns configuration into runtime.ExecutionContexts, a Runner
// executes them through an Executor (normally *runtime.Registry) and reports
// stage starts to a Reporter.
package pipeline
