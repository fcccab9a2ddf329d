package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/bolens/ps-profile/internal/domain"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecuteCapturesOutput(t *testing.T) {
	requireShell(t)
	result, err := NewLocalExecutor().Execute(context.Background(), domain.ExecutionRequest{
		Command: "sh",
		Args:    []string{"-c", "echo out; echo err 1>&2"},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !result.Ran || result.ExitCode != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if strings.TrimSpace(result.Stdout) != "out" || strings.TrimSpace(result.Stderr) != "err" {
		t.Fatalf("unexpected streams %+v", result)
	}
}

func TestExecuteReportsExitCode(t *testing.T) {
	requireShell(t)
	result, err := NewLocalExecutor().Execute(context.Background(), domain.ExecutionRequest{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	})
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exit error, got %v", err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
}

func TestExecuteInteractiveUsesStdio(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	exe := NewLocalExecutor().WithStdio(strings.NewReader("ping\n"), &out, &out)

	result, err := exe.Execute(context.Background(), domain.ExecutionRequest{
		Command:     "sh",
		Args:        []string{"-c", "read line; echo got $line"},
		Interactive: true,
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Stdout != "" {
		t.Fatalf("interactive runs should not capture stdout, got %q", result.Stdout)
	}
	if strings.TrimSpace(out.String()) != "got ping" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestExecuteMissingBinary(t *testing.T) {
	result, err := NewLocalExecutor().Execute(context.Background(), domain.ExecutionRequest{
		Command: "psprofile-definitely-missing",
	})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if result.Ran || result.ExitCode != -1 {
		t.Fatalf("unexpected result %+v", result)
	}
}
