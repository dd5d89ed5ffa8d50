package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// Runner launches the external build and test processes.
type Runner interface {
	// Run executes argv in dir, streaming combined output to out. It returns
	// the process exit code; err is set only when the process could not be
	// run or was stopped by the timeout.
	Run(ctx context.Context, dir string, argv []string, timeout time.Duration, out io.Writer) (int, error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir string, argv []string, timeout time.Duration, out io.Writer) (int, error) {
	if len(argv) == 0 {
		return -1, errors.New("empty command line")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	if ctx.Err() != nil {
		return -1, fmt.Errorf("%s: %w", argv[0], ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("run %s: %w", argv[0], err)
	}
	return 0, nil
}
