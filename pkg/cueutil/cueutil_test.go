// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

const testSchema = `
#Doc: {
	name?: string & !=""
	jobs?: int & >=1
	targets?: [...string]
}
`

type testDoc struct {
	Name    string   `json:"name"`
	Jobs    int      `json:"jobs"`
	Targets []string `json:"targets"`
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    testDoc
		wantErr string
	}{
		{
			name: "all fields",
			data: `name: "x", jobs: 4, targets: ["a", "b"]`,
			want: testDoc{Name: "x", Jobs: 4, Targets: []string{"a", "b"}},
		},
		{
			name: "empty document",
			data: ``,
			want: testDoc{},
		},
		{
			name:    "bound violated",
			data:    `jobs: 0`,
			wantErr: "jobs",
		},
		{
			name:    "unknown field rejected by closed definition",
			data:    `nope: 1`,
			wantErr: "nope",
		},
		{
			name:    "syntax error",
			data:    `jobs: [`,
			wantErr: "doc.cue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Validate[testDoc]([]byte(testSchema), []byte(tt.data), "#Doc",
				WithConcrete(false), WithFilename("doc.cue"))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if got.Name != tt.want.Name || got.Jobs != tt.want.Jobs || strings.Join(got.Targets, ",") != strings.Join(tt.want.Targets, ",") {
				t.Errorf("Validate() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestValidate_SizeLimit(t *testing.T) {
	t.Parallel()

	_, err := Validate[testDoc]([]byte(testSchema), []byte(`name: "abcdef"`), "#Doc", WithMaxFileSize(4))
	if err == nil {
		t.Fatal("expected size limit error")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := Validate[testDoc]([]byte(testSchema), []byte(``), "#Missing")
	if err == nil || !strings.Contains(err.Error(), "#Missing") {
		t.Fatalf("expected missing definition error, got %v", err)
	}
}

func TestFormatError_NonCUE(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("FormatError(nil) should be nil")
	}

	base := errors.New("boom")
	err := FormatError(base, "x.cue")
	if !errors.Is(err, base) {
		t.Errorf("FormatError should wrap non-CUE errors, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "x.cue: ") {
		t.Errorf("FormatError should prefix the file name, got %q", err)
	}
}

func TestFormatError_Chain(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	tests := []struct {
		name    string
		err     error
		want    string
		wrapped bool
	}{
		{"wrapped go error", fmt.Errorf("decode config: %w", base), "x.cue: decode config: boom", true},
		{"cue error", cueerrors.Newf(token.NoPos, "conflicting values 1 and 2"), "x.cue: conflicting values 1 and 2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := FormatError(tt.err, "x.cue")
			if err.Error() != tt.want {
				t.Errorf("FormatError() = %q, want %q", err, tt.want)
			}
			if got := errors.Is(err, base); got != tt.wrapped {
				t.Errorf("errors.Is(base) = %v, want %v", got, tt.wrapped)
			}
		})
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"jobs"}, "jobs"},
		{[]string{"build", "targets", "0"}, "build.targets[0]"},
		{[]string{"tests", "secondary", "filter"}, "tests.secondary.filter"},
		{[]string{"0"}, "0"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
