package testutil

import (
	"context"
	"io"
	"sync"
	"time"
)

// RunCall records one invocation of a FakeRunner.
type RunCall struct {
	Dir     string
	Argv    []string
	Timeout time.Duration
}

// FakeRunner is a session.Runner that never starts a process.
type FakeRunner struct {
	// Respond produces the output and exit code of a call. A nil Respond
	// makes every call succeed silently.
	Respond func(argv []string) (output string, code int, err error)

	mu    sync.Mutex
	calls []RunCall
}

// Run implements session.Runner.
func (r *FakeRunner) Run(_ context.Context, dir string, argv []string, timeout time.Duration, out io.Writer) (int, error) {
	r.mu.Lock()
	r.calls = append(r.calls, RunCall{Dir: dir, Argv: append([]string(nil), argv...), Timeout: timeout})
	r.mu.Unlock()

	if r.Respond == nil {
		return 0, nil
	}
	output, code, err := r.Respond(argv)
	if output != "" {
		io.WriteString(out, output)
	}
	return code, err
}

// Calls returns the recorded invocations.
func (r *FakeRunner) Calls() []RunCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RunCall(nil), r.calls...)
}
