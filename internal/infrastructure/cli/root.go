// Package cli exposes the profile runtime as the psprofile command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/bolens/ps-profile/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// ExitError carries a wrapped tool's exit status back to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, app.Options{Verbose: opts.Verbose, ConfigPath: opts.ConfigPath})
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "psprofile",
		Short: "Shell profile fragments with cached tool detection",
		Long: `psprofile loads profile fragments once per session and defines wrapper
functions for external tools. Each tool is probed once and the outcome is
cached, so wrappers for missing tools cost nothing at startup.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = container.Logger.Sync()
		},
	}

	root.AddCommand(newCheckCommand(container))
	root.AddCommand(newCacheCommand(container))
	root.AddCommand(newFragmentsCommand(container))
	root.AddCommand(newRunCommand(container))
	root.AddCommand(newInitCommand(container))
	root.AddCommand(newInstallCommand(container))
	root.AddCommand(newUninstallCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newWatchCommand(container))
	root.AddCommand(newConfigCommand(container))
	return root, nil
}

// ExitCode maps a command error to a process exit status, 0 when nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var procErr *exec.ExitError
	if errors.As(err, &procErr) {
		return procErr.ExitCode()
	}
	return 1
}
