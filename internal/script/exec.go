package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

var (
	ErrTimeout = errors.New("script execution timed out")
	ErrExec    = errors.New("error executing script")
)

// Result is what a finished script left behind. A non-zero ExitCode is a
// normal result, not an error.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

func (r *Result) Succeeded() bool {
	return r.ExitCode == 0
}

type Executor struct {
	Timeout time.Duration
	// WaitDelay bounds how long Run waits for output pipes after the child is
	// killed, in case grandchildren still hold them open.
	WaitDelay time.Duration
	logger    *zap.Logger
}

func NewExecutor(timeout time.Duration, logger *zap.Logger) *Executor {
	return &Executor{
		Timeout:   timeout,
		WaitDelay: 2 * time.Second,
		logger:    logger,
	}
}

// Run executes `interpreter scriptPath` and captures both output streams.
// It returns ErrTimeout when the deadline kills the child and ErrExec when
// the child could not be started or waited on.
func (e *Executor) Run(ctx context.Context, interpreter string, scriptPath string) (*Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, interpreter, scriptPath)
	cmd.WaitDelay = e.WaitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("running script", zap.String("interpreter", interpreter), zap.String("script", scriptPath))

	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.logger.Warn("script timed out", zap.Duration("timeout", e.Timeout))
		result.ExitCode = -1
		return result, fmt.Errorf("%w after %s", ErrTimeout, e.Timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.Exited() {
			result.ExitCode = exitErr.ExitCode()
			e.logger.Info("script exited with error", zap.Int("exit_code", result.ExitCode), zap.Duration("duration", result.Duration))
			return result, nil
		}
		e.logger.Error("failed to run script", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExec, err)
	}

	e.logger.Info("script finished", zap.Duration("duration", result.Duration))
	return result, nil
}
