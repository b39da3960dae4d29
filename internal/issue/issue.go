// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Catalog entry identifiers.
const (
	ConfigLoadFailedId Id = iota + 1
	TestsRootNotFoundId
	ToolNotFoundId
	BuildLockFailedId
	UnknownStageId
	RootNotFoundId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of a catalog entry.
	MarkdownMsg string

	// HttpLink is a documentation URL attached to a catalog entry.
	HttpLink string

	// Issue is a remediation guide rendered for the terminal with glamour.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// Id returns the catalog identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the attached links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the guide with the given glamour style ("dark", "light",
// "notty", or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		var sb strings.Builder
		sb.WriteString(md)
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		md = sb.String()
	}
	return render(md, stylePath)
}

var render = glamour.Render

var (
	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

buildtest reads CUE configuration from, in order:

1. the file given with ` + "`--config`" + `
2. ` + "`$XDG_CONFIG_HOME/buildtest/config.cue`" + ` (or the platform equivalent)
3. ` + "`buildtest.cue`" + ` in the current directory

## Things you can try
- Print the configuration that would be used:
~~~
$ buildtest config dump
~~~
- Recreate the default file:
~~~
$ buildtest config init
~~~
- Check the reported field path against the schema: ` + "`build.jobs`" + ` must be at least 1,
  ` + "`build_type`" + ` must be a CMake build type, ` + "`scripts.runtime`" + ` is "native" or "virtual".`,
		docLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
	}

	testsRootNotFoundIssue = &Issue{
		id: TestsRootNotFoundId,
		mdMsg: `
# Tests root directory not found

The secondary test binary receives the absolute path of the repository's
tests directory. That directory could not be resolved, so the binary was
not started.

## Things you can try
- Make sure the checkout is complete and contains ` + "`tests/`" + `
- Point buildtest at the right repository:
~~~
$ buildtest --root /path/to/repo
~~~
- Override the directory name with ` + "`tests.secondary.tests_dir`" + ` in your config`,
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# A build tool could not be started

One of the programs the pipeline runs (generator, cmake, make or a test
binary) was not found or is not executable.

## Things you can try
- Install CMake, make and the configured compilers (clang/clang++ by default)
- Run the stages in order: test binaries exist only after the build stage
- Inspect the exact invocations:
~~~
$ buildtest plan
~~~`,
	}

	buildLockFailedIssue = &Issue{
		id: BuildLockFailedId,
		mdMsg: `
# Could not lock the build directory

Concurrent runs against the same build tree are serialised through
` + "`<build dir>/.buildtest.lock`" + `. The lock file could not be created or locked.

## Things you can try
- Check permissions on the build directory
- Remove a stale build directory owned by another user`,
	}

	unknownStageIssue = &Issue{
		id: UnknownStageId,
		mdMsg: `
# Unknown stage

` + "`--only`" + ` and ` + "`--skip`" + ` accept the stage identifiers printed by:
~~~
$ buildtest stages
~~~`,
	}

	rootNotFoundIssue = &Issue{
		id: RootNotFoundId,
		mdMsg: `
# Repository root could not be determined

buildtest looks for ` + "`CMakeLists.txt`" + ` next to its own executable's parent
directory and then upwards from the current directory.

## Things you can try
- Run buildtest from inside the repository
- Pass the root explicitly:
~~~
$ buildtest --root /path/to/repo
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		testsRootNotFoundIssue.Id(): testsRootNotFoundIssue,
		toolNotFoundIssue.Id():      toolNotFoundIssue,
		buildLockFailedIssue.Id():   buildLockFailedIssue,
		unknownStageIssue.Id():      unknownStageIssue,
		rootNotFoundIssue.Id():      rootNotFoundIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
