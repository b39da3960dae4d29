// SPDX-License-Identifier: MPL-2.0

// Package runtime runs the external collaborators of the build pipeline.
//
// Two runtimes implement the Runtime interface:
//   - native: starts the program as a host process (os/exec)
//   - virtual: interprets a shell script in-process with mvdan/sh, for script
//     collaborators on hosts without a POSIX shell
//
// ExecutionContext describes a single invocation: program, arguments, working
// directory, stage environment and I/O streams. The child environment is built
// by an EnvBuilder from the host environment, optional dotenv files and the
// stage-specific variables, in that order of precedence. The orchestrator's
// own process environment is never modified.
//
// Every invocation yields a Result: the collaborator's exit code, or an error
// with exit code 127 when the program could not be started at all.
package runtime
