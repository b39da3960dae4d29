// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type (
	// EnvBuilder builds the environment of one invocation. Sources apply in
	// increasing precedence:
	//
	//  1. host environment
	//  2. ExecutionContext.EnvFiles, in order
	//  3. ExecutionContext.Env (stage-specific variables)
	EnvBuilder interface {
		Build(ctx *ExecutionContext) (map[string]string, error)
	}

	// DefaultEnvBuilder implements the standard precedence.
	DefaultEnvBuilder struct {
		// Environ returns the host environment as KEY=VALUE pairs.
		// Nil means os.Environ.
		Environ func() []string
	}
)

// NewDefaultEnvBuilder returns a builder reading os.Environ.
func NewDefaultEnvBuilder() *DefaultEnvBuilder {
	return &DefaultEnvBuilder{}
}

// Build returns a fresh map; the process environment is only read.
func (b *DefaultEnvBuilder) Build(ctx *ExecutionContext) (map[string]string, error) {
	environ := b.Environ
	if environ == nil {
		environ = os.Environ
	}

	env := make(map[string]string)
	for _, kv := range environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}

	for _, path := range ctx.EnvFiles {
		if err := LoadEnvFile(env, path, ctx.WorkDir); err != nil {
			return nil, err
		}
	}

	maps.Copy(env, ctx.Env)
	return env, nil
}

// LoadEnvFile merges a dotenv file into env. Relative paths resolve against
// baseDir; a trailing "?" makes a missing file a no-op.
func LoadEnvFile(env map[string]string, path, baseDir string) error {
	optional := strings.HasSuffix(path, "?")
	path = strings.TrimSuffix(path, "?")

	full := filepath.FromSlash(path)
	if !filepath.IsAbs(full) && baseDir != "" {
		full = filepath.Join(baseDir, full)
	}

	values, err := godotenv.Read(full)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file '%s': %w", path, err)
	}

	maps.Copy(env, values)
	return nil
}
