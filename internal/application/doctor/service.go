// Package doctor checks that the profile environment is healthy.
package doctor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	Fragments       ports.FragmentSource
	Cache           ports.AvailabilityCache
	ShellIntegrator ports.ShellIntegrator
}

// Run executes checks and returns a report. A config that cannot be loaded
// stops the run since every later check depends on it.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s", cfg.ConfigFormatVersion)))

	var defs []domain.FragmentDefinition
	if s.Fragments != nil {
		defs, err = s.Fragments.Fragments(ctx)
		if err != nil {
			checks = append(checks, fail("Fragments", err.Error()))
		} else {
			checks = append(checks, ok("Fragments", fmt.Sprintf("%d parsed from %s", len(defs), s.Fragments.Location())))
		}
	}

	if s.Cache != nil && len(defs) > 0 {
		checks = append(checks, s.toolCheck(cfg, defs))
	}

	if s.ShellIntegrator != nil {
		status := s.ShellIntegrator.Status(cfg.Preferences.Shell)
		switch {
		case status.ScriptExists && status.LinePresent:
			checks = append(checks, ok("Shell integration", fmt.Sprintf("%s ready", status.Shell)))
		case status.Error != "":
			checks = append(checks, warn("Shell integration", status.Error))
		default:
			checks = append(checks, warn("Shell integration", "not installed"))
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

// toolCheck probes the command behind every wrapper of enabled fragments.
// Commands that name another wrapper delegate to it and are not probed.
// Missing tools only warn; their wrappers degrade to no-ops.
func (s *Service) toolCheck(cfg domain.Config, defs []domain.FragmentDefinition) domain.HealthCheck {
	var enabled []domain.FragmentDefinition
	for _, def := range defs {
		if !cfg.IsFragmentDisabled(def.Name) {
			enabled = append(enabled, def)
		}
	}
	owners := definedNames(enabled)

	seen := make(map[string]struct{})
	var missing []string
	total := 0
	for _, def := range enabled {
		for _, w := range def.Wrappers {
			key := domain.NormalizeCommandName(w.Command)
			if owner, ok := owners[key]; ok && owner != wrapperKey(def.Name, w.Name) {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			total++
			if !s.Cache.IsAvailable(w.Command) {
				missing = append(missing, w.Command)
			}
		}
	}
	if len(missing) == 0 {
		return ok("Tools", fmt.Sprintf("%d of %d available", total, total))
	}
	sort.Strings(missing)
	return warn("Tools", fmt.Sprintf("%d of %d available, missing: %s", total-len(missing), total, strings.Join(missing, ", ")))
}

// definedNames maps every wrapper and alias name to the wrapper defining it.
// Later definitions win, as they do when fragments load.
func definedNames(defs []domain.FragmentDefinition) map[string]string {
	owners := make(map[string]string)
	for _, def := range defs {
		for _, w := range def.Wrappers {
			owner := wrapperKey(def.Name, w.Name)
			owners[domain.NormalizeCommandName(w.Name)] = owner
			for _, alias := range w.Aliases {
				owners[domain.NormalizeCommandName(alias)] = owner
			}
		}
	}
	return owners
}

func wrapperKey(fragment, name string) string {
	return fragment + "/" + name
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
