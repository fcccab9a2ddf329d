// Package domain defines the core entities and value objects for psprofile.
//
// The domain layer is independent of infrastructure concerns: it describes
// command availability records, fragment definitions and load state, the
// configuration file, and the health checks reported by doctor.
package domain

import (
	"strings"
	"time"
)

// CommandRecord is the cached outcome of resolving one external command.
type CommandRecord struct {
	Name       string
	Available  bool
	ResolvedAt time.Time
}

// Fresh reports whether the record may still be trusted at now.
// A non-positive ttl means the record never goes stale.
func (r CommandRecord) Fresh(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(r.ResolvedAt) < ttl
}

// NormalizeCommandName folds a command name to its cache key.
func NormalizeCommandName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
