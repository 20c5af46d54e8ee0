package exec

import (
	"context"
	"strings"
	"sync"
)

// FakeRunner records commands instead of running them. Responses are
// matched by the first registered prefix of the command line.
type FakeRunner struct {
	mu        sync.Mutex
	Commands  []Command
	responses []fakeResponse
}

type fakeResponse struct {
	prefix string
	result Result
	err    error
}

// NewFakeRunner creates an empty FakeRunner; unmatched commands succeed.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers the result returned for commands starting with prefix.
func (f *FakeRunner) On(prefix string, result Result, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{prefix: prefix, result: result, err: err})
	return f
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, cmd Command) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commands = append(f.Commands, cmd)
	for _, r := range f.responses {
		if strings.HasPrefix(cmd.Line, r.prefix) {
			return r.result, r.err
		}
	}
	return Result{}, nil
}

// Lines returns the recorded command lines in order.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Commands))
	for _, c := range f.Commands {
		out = append(out, c.Line)
	}
	return out
}
