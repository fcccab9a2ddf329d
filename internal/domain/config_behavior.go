package domain

import (
	"fmt"
	"time"
)

// AvailabilityTTL parses the configured staleness horizon.
// Zero means entries never expire on their own.
func (c *Config) AvailabilityTTL() (time.Duration, error) {
	return parseOptionalDuration("availability.ttl", c.Availability.TTL)
}

// ExecutionTimeout parses the configured wrapper timeout. Zero means none.
func (c *Config) ExecutionTimeout() (time.Duration, error) {
	return parseOptionalDuration("execution.timeout", c.Execution.Timeout)
}

// IsFragmentDisabled reports whether name is listed under fragments.disabled.
func (c *Config) IsFragmentDisabled(name string) bool {
	for _, disabled := range c.Fragments.Disabled {
		if disabled == name {
			return true
		}
	}
	return false
}

// DisableFragment adds name to the disabled list.
// Returns an error if it is already disabled.
func (c *Config) DisableFragment(name string) error {
	if name == "" {
		return fmt.Errorf("fragment name cannot be empty")
	}
	if c.IsFragmentDisabled(name) {
		return fmt.Errorf("fragment %s already disabled", name)
	}
	c.Fragments.Disabled = append(c.Fragments.Disabled, name)
	return nil
}

// EnableFragment removes name from the disabled list.
// Returns an error if it was not disabled.
func (c *Config) EnableFragment(name string) error {
	for i, disabled := range c.Fragments.Disabled {
		if disabled == name {
			c.Fragments.Disabled = append(c.Fragments.Disabled[:i], c.Fragments.Disabled[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("fragment %s is not disabled", name)
}

func parseOptionalDuration(field, raw string) (time.Duration, error) {
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", field, raw)
	}
	return d, nil
}
