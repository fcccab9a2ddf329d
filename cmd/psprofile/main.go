package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"

	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/infrastructure/cli"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{Verbose: isVerbose()}

	root, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	err = fang.Execute(ctx, root,
		fang.WithVersion(buildVersion()),
		fang.WithNotifySignal(os.Interrupt),
	)
	os.Exit(cli.ExitCode(err))
}

func buildVersion() string {
	if commit == "none" {
		return version
	}
	if len(commit) > 7 {
		return fmt.Sprintf("%s (%s)", version, commit[:7])
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}

func isVerbose() bool {
	v := os.Getenv(domain.DebugEnvVar)
	return v == "1" || strings.EqualFold(v, "true")
}
