package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrToolUnavailable is returned by strict invocations of a wrapper whose tool is missing.
	ErrToolUnavailable = errors.New("tool unavailable")
	// ErrWrapperNotFound is returned when no fragment registered the requested wrapper.
	ErrWrapperNotFound = errors.New("wrapper not found")
	// ErrFragmentInvalid marks fragment files that cannot be parsed or validated.
	ErrFragmentInvalid = errors.New("invalid fragment")
	// ErrUnsupportedShell is returned for shells without an integration hook.
	ErrUnsupportedShell = errors.New("unsupported shell")
)

// ToolUnavailableError reports which wrapper was blocked by which missing command.
type ToolUnavailableError struct {
	Wrapper string
	Command string
}

func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s not found in PATH", e.Wrapper, e.Command)
}

func (e *ToolUnavailableError) Unwrap() error {
	return ErrToolUnavailable
}
