// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Stage identifiers in execution order.
const (
	StageGenerate StageID = "generate"
	StageBuild    StageID = "build"
	StageLint     StageID = "lint"
	StageTest     StageID = "test"
	StageTestRoot StageID = "test-root"
)

// ErrInvalidStageID is wrapped by InvalidStageIDError.
var ErrInvalidStageID = errors.New("invalid stage id")

var stages = []Stage{
	{ID: StageGenerate, Label: "#### Generating files... ####", Description: "run the code generator"},
	{ID: StageBuild, Label: "#### Building... ####", Description: "configure with CMake and compile the test targets"},
	{ID: StageLint, Label: "#### Linting... ####", Description: "run the lint wrapper when the lint tool is on PATH"},
	{ID: StageTest, Label: "#### Testing... ####", Description: "run the primary test binary"},
	{ID: StageTestRoot, Label: "#### Running tests... ####", Description: "run the secondary test binary against the tests directory"},
}

type (
	// StageID names a pipeline stage.
	StageID string

	// Stage describes one pipeline stage.
	Stage struct {
		ID StageID
		// Label is printed when the stage starts.
		Label       string
		Description string
	}

	// InvalidStageIDError reports an unknown stage name.
	InvalidStageIDError struct {
		Value StageID
	}

	// Selection restricts which stages run. Only wins over nothing; Skip is
	// applied afterwards. Canonical order is always preserved.
	Selection struct {
		Only []StageID
		Skip []StageID
	}
)

// Error implements error.
func (e *InvalidStageIDError) Error() string {
	ids := make([]string, len(stages))
	for i, s := range stages {
		ids[i] = string(s.ID)
	}
	return fmt.Sprintf("invalid stage id %q (must be one of %s)", e.Value, strings.Join(ids, ", "))
}

// Unwrap returns ErrInvalidStageID.
func (e *InvalidStageIDError) Unwrap() error { return ErrInvalidStageID }

// Stages returns every stage in execution order.
func Stages() []Stage {
	return slices.Clone(stages)
}

// Lookup returns the stage with the given id.
func Lookup(id StageID) (Stage, bool) {
	i := slices.IndexFunc(stages, func(s Stage) bool { return s.ID == id })
	if i < 0 {
		return Stage{}, false
	}
	return stages[i], true
}

// IsValid reports whether id names a stage.
func (id StageID) IsValid() (bool, []error) {
	if _, ok := Lookup(id); !ok {
		return false, []error{&InvalidStageIDError{Value: id}}
	}
	return true, nil
}

// String returns the stage name.
func (id StageID) String() string { return string(id) }

// ParseStageIDs parses flag values such as ["lint,test", "build"]. Blank
// entries are ignored and duplicates collapse.
func ParseStageIDs(values []string) ([]StageID, error) {
	var ids []StageID
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			id := StageID(strings.TrimSpace(part))
			if id == "" {
				continue
			}
			if ok, errs := id.IsValid(); !ok {
				return nil, errs[0]
			}
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// Includes reports whether id runs under s.
func (s Selection) Includes(id StageID) bool {
	if len(s.Only) > 0 && !slices.Contains(s.Only, id) {
		return false
	}
	return !slices.Contains(s.Skip, id)
}

// Stages returns the selected stages in execution order.
func (s Selection) Stages() []Stage {
	var out []Stage
	for _, st := range stages {
		if s.Includes(st.ID) {
			out = append(out, st)
		}
	}
	return out
}
