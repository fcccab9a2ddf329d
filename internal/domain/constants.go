package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// FilePermissions is the permission for hook scripts and fragments (rw-r--r--)
	FilePermissions = 0o644
)

// Timeout and duration constants
const (
	// DefaultAvailabilityTTL is how long an availability outcome is trusted; zero is forever
	DefaultAvailabilityTTL = time.Duration(0)
	// DefaultProbeTimeout bounds a single `--version` style probe run by doctor
	DefaultProbeTimeout = 2 * time.Second
)

// Naming constants
const (
	// AppName is used for the config directory and env var prefixes
	AppName = "psprofile"
	// ConfigEnvVar overrides the config file location
	ConfigEnvVar = "PSPROFILE_CONFIG"
	// DebugEnvVar turns on verbose logging before the config is read
	DebugEnvVar = "PSPROFILE_DEBUG"
	// FragmentsDirName is the default fragments directory under the app dir
	FragmentsDirName = "fragments.d"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
