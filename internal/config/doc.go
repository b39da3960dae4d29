// SPDX-License-Identifier: MPL-2.0

// Package config handles buildtest configuration using Viper with CUE as the
// file format.
//
// Values come from, in increasing precedence: built-in defaults (the toolchain
// constants of the original build script), a CUE file validated against the
// embedded #Config schema, and BUILDTEST_* environment variables. The file is
// the --config path when given, otherwise config.cue in the user config
// directory, otherwise buildtest.cue in the working directory.
package config
