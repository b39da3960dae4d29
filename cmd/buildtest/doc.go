// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the buildtest CLI: the pipeline commands (run, plan,
// stages) and configuration management (config show|dump|init|path).
//
// App is the composition root. Command handlers receive an *App and delegate
// to its services, so tests can swap the config provider, executor and
// PATH prober.
package cmd
