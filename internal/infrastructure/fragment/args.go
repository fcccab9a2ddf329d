package fragment

import (
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// SplitArgs splits a wrapper's default argument string the way a POSIX shell
// would, expanding $VAR references from the process environment.
func SplitArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	fields, err := shell.Fields(raw, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("split args %q: %w", raw, err)
	}
	return fields, nil
}
