package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/ports"
)

// LocalExecutor runs wrapped tools directly, without an intermediate shell.
type LocalExecutor struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewLocalExecutor builds an executor attached to the process stdio for interactive runs.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

// WithStdio returns a copy that uses the given streams for interactive runs.
func (e *LocalExecutor) WithStdio(stdin io.Reader, stdout, stderr io.Writer) *LocalExecutor {
	return &LocalExecutor{stdin: stdin, stdout: stdout, stderr: stderr}
}

// Execute implements ports.CommandExecutor. A non-zero exit is reported in the
// result and returned as an *exec.ExitError.
func (e *LocalExecutor) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error) {
	c := exec.CommandContext(ctx, req.Command, req.Args...)
	var stdout, stderr bytes.Buffer
	if req.Interactive {
		c.Stdin = e.stdin
		c.Stdout = e.stdout
		c.Stderr = e.stderr
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	start := time.Now()
	err := c.Run()
	duration := time.Since(start).Milliseconds()

	result := domain.ExecutionResult{
		Ran:        c.ProcessState != nil,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: duration,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, err
	}
	if err != nil {
		result.ExitCode = -1
		return result, err
	}
	return result, nil
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
