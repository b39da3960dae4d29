// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"maps"
	"slices"
	"strings"

	"github.com/buildtest/buildtest/internal/runtime"

	"mvdan.cc/sh/v3/syntax"
)

// FormatInvocation renders ec as a shell command line, prefixed with its
// stage-specific environment, that could be pasted into bash.
func FormatInvocation(ec *runtime.ExecutionContext) string {
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(ec.Env)) {
		parts = append(parts, k+"="+quote(ec.Env[k]))
	}
	for _, arg := range ec.Argv() {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only strings bash cannot represent (NUL bytes) get here.
		return strings.ReplaceAll(s, "\x00", "")
	}
	return q
}
