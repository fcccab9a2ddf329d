package domain

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Ran        bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
}

// ExecutionRequest describes one wrapper invocation.
type ExecutionRequest struct {
	Command string
	Args    []string
	// Interactive attaches the caller's stdio instead of capturing output.
	Interactive bool
}

// CheckResult is the availability of one command as reported by `check`.
type CheckResult struct {
	Command   string
	Available bool
}
