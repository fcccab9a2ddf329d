// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The availability cache and the fragment load guard are
// consumed through these interfaces so that the profile loader, doctor and CLI never
// depend on a concrete store, and tests can substitute fakes for the PATH probe.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., CommandResolver, AvailabilityCache)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/bolens/ps-profile/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.psprofile/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CommandResolver answers whether a command can be invoked right now.
// Implementations must not panic or block for long; they never report errors,
// a failed probe is simply false.
type CommandResolver interface {
	Resolve(name string) bool
}

// AvailabilityCache memoizes CommandResolver outcomes for the session.
type AvailabilityCache interface {
	IsAvailable(name string) bool
	Clear(name string)
	ClearAll()
	Records() []domain.CommandRecord
}

// LoadGuard tracks which fragments finished initialization in this session.
type LoadGuard interface {
	IsLoaded(name string) bool
	MarkLoaded(name string)
	Clear(name string)
	GetLoadGuard(name string) func() bool
	Loaded() []domain.FragmentState
}

// FragmentSource produces fragment definitions in load order.
type FragmentSource interface {
	Fragments(context.Context) ([]domain.FragmentDefinition, error)
	Location() string
}

// CommandExecutor runs external commands on behalf of wrapper functions.
type CommandExecutor interface {
	Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error)
}

// ShellIntegrator manages shell integration hooks (pwsh, bash, zsh).
// Handles installation and removal of the profile hook that sources psprofile's functions.
type ShellIntegrator interface {
	Install(shell string, force bool) (domain.ShellInstallResult, error)
	Uninstall(shell string) (domain.ShellInstallResult, error)
	Status(shell string) domain.ShellStatus
	DetectShell() string
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
