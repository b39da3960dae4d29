// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/buildtest/buildtest/internal/config"
	"github.com/buildtest/buildtest/internal/runtime"
)

type (
	staticConfig struct {
		cfg *config.Config
		err error
	}

	recordingExecutor struct {
		mu      sync.Mutex
		calls   []*runtime.ExecutionContext
		results map[string]*runtime.Result
	}

	fakeProber map[string]string

	testApp struct {
		*App
		exec   *recordingExecutor
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	}
)

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (e *recordingExecutor) Execute(ctx *runtime.ExecutionContext) *runtime.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, ctx)
	if res, ok := e.results[filepath.Base(ctx.Program)]; ok {
		return res
	}
	return runtime.NewSuccessResult()
}

func (e *recordingExecutor) programs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	for i, c := range e.calls {
		out[i] = filepath.Base(c.Program)
	}
	return out
}

func (p fakeProber) LookPath(name string) (string, bool) {
	path, ok := p[name]
	return path, ok
}

// newTestApp builds an App around cfg with a recording executor, no lint
// tool on PATH and locking disabled.
func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	ta := &testApp{
		exec:   &recordingExecutor{results: map[string]*runtime.Result{}},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	ta.App = NewApp(Dependencies{
		Config:   staticConfig{cfg: cfg},
		Executor: ta.exec,
		Prober:   fakeProber{},
		Lock:     func(string) (func(), error) { return func() {}, nil },
		Stdout:   ta.stdout,
		Stderr:   ta.stderr,
		Stdin:    strings.NewReader(""),
	})
	return ta
}

func (ta *testApp) run(args ...string) int {
	return execute(context.Background(), ta.App, args)
}
