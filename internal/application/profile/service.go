// Package profile loads fragments into the session and invokes the wrapper
// functions they define.
package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/infrastructure/availability"
	"github.com/bolens/ps-profile/internal/infrastructure/fragment"
	"github.com/bolens/ps-profile/internal/ports"
)

// maxDelegation bounds wrapper-to-wrapper chains.
const maxDelegation = 8

// Service wires the availability cache, load guard and function registry together.
type Service struct {
	// Cache answers for external tools only. Registered functions never
	// count as the tool behind a wrapper.
	Cache    ports.AvailabilityCache
	Guard    ports.LoadGuard
	Registry *Registry
	Executor ports.CommandExecutor
	Logger   ports.Logger

	// Strict turns a missing tool into ErrToolUnavailable instead of a silent no-op.
	Strict  bool
	Timeout time.Duration
	// Disabled names fragments that Load must skip.
	Disabled func(name string) bool
}

// InvokeRequest is one call of a wrapper function.
type InvokeRequest struct {
	Name        string
	Args        []string
	Interactive bool
}

// Load initializes each fragment once per session, in the given order.
func (s *Service) Load(ctx context.Context, defs []domain.FragmentDefinition) (domain.LoadReport, error) {
	var report domain.LoadReport
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if s.Disabled != nil && s.Disabled(def.Name) {
			report.Disabled = append(report.Disabled, def.Name)
			continue
		}
		alreadyLoaded := s.Guard.GetLoadGuard(def.Name)
		if alreadyLoaded() {
			s.Logger.Debug("fragment already loaded", map[string]interface{}{"fragment": def.Name})
			report.Skipped = append(report.Skipped, def.Name)
			continue
		}

		wrappers, err := buildWrappers(def)
		if err != nil {
			return report, err
		}
		for _, w := range wrappers {
			if !s.Registry.Register(w) {
				s.Logger.Warn("function redefined", map[string]interface{}{
					"fragment": def.Name,
					"function": w.Name,
				})
				report.Redefined = append(report.Redefined, w.Name)
			}
		}

		s.Guard.MarkLoaded(def.Name)
		s.Logger.Debug("fragment loaded", map[string]interface{}{
			"fragment": def.Name,
			"wrappers": len(wrappers),
		})
		report.Loaded = append(report.Loaded, def.Name)
	}
	return report, nil
}

// Reload clears one fragment's flag and functions, then loads it again.
func (s *Service) Reload(ctx context.Context, name string, defs []domain.FragmentDefinition) (domain.LoadReport, error) {
	for _, def := range defs {
		if def.Name != name {
			continue
		}
		s.Guard.Clear(name)
		s.Registry.RemoveFragment(name)
		return s.Load(ctx, []domain.FragmentDefinition{def})
	}
	return domain.LoadReport{}, fmt.Errorf("fragment %q not found", name)
}

// Invoke runs a wrapper. When its tool is missing the call is a no-op that
// returns a zero result, unless Strict is set.
func (s *Service) Invoke(ctx context.Context, req InvokeRequest) (domain.ExecutionResult, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.invoke(ctx, req, 0)
}

func (s *Service) invoke(ctx context.Context, req InvokeRequest, depth int) (domain.ExecutionResult, error) {
	w, ok := s.Registry.Lookup(req.Name)
	if !ok {
		return domain.ExecutionResult{}, fmt.Errorf("%w: %s", domain.ErrWrapperNotFound, req.Name)
	}
	args := append(append([]string{}, w.Args...), req.Args...)

	if target, ok := s.Registry.Lookup(w.Command); ok && target.Name != w.Name {
		if depth >= maxDelegation {
			return domain.ExecutionResult{}, fmt.Errorf("%s: wrapper chain deeper than %d", req.Name, maxDelegation)
		}
		return s.invoke(ctx, InvokeRequest{Name: w.Command, Args: args, Interactive: req.Interactive}, depth+1)
	}

	if !s.Cache.IsAvailable(w.Command) {
		if s.Strict {
			return domain.ExecutionResult{}, &domain.ToolUnavailableError{Wrapper: w.Name, Command: w.Command}
		}
		s.Logger.Warn("tool not available, skipping", map[string]interface{}{
			"function": w.Name,
			"command":  w.Command,
		})
		return domain.ExecutionResult{}, nil
	}

	result, err := s.Executor.Execute(ctx, domain.ExecutionRequest{
		Command:     w.Command,
		Args:        args,
		Interactive: req.Interactive,
	})
	if err != nil {
		return result, fmt.Errorf("%s: %w", w.Name, err)
	}
	return result, nil
}

// Check reports, in order, whether each name can be called: either a
// registered function or an available external tool.
func (s *Service) Check(names ...string) []domain.CheckResult {
	callable := availability.ChainResolver{s.Registry, availability.ResolverFunc(s.Cache.IsAvailable)}
	out := make([]domain.CheckResult, 0, len(names))
	for _, name := range names {
		out = append(out, domain.CheckResult{Command: name, Available: callable.Resolve(name)})
	}
	return out
}

// AvailableWrappers lists registered wrappers whose tool is available,
// following delegation to other wrappers.
func (s *Service) AvailableWrappers() []domain.Wrapper {
	var out []domain.Wrapper
	for _, w := range s.Registry.Wrappers() {
		if s.toolAvailable(w, 0) {
			out = append(out, w)
		}
	}
	return out
}

// toolAvailable gates w on the external tool at the end of its delegation
// chain. A command naming w itself or one of its aliases is external.
func (s *Service) toolAvailable(w domain.Wrapper, depth int) bool {
	if target, ok := s.Registry.Lookup(w.Command); ok && target.Name != w.Name {
		return depth < maxDelegation && s.toolAvailable(target, depth+1)
	}
	return s.Cache.IsAvailable(w.Command)
}

func buildWrappers(def domain.FragmentDefinition) ([]domain.Wrapper, error) {
	out := make([]domain.Wrapper, 0, len(def.Wrappers))
	for _, wd := range def.Wrappers {
		args, err := fragment.SplitArgs(wd.Args)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", domain.ErrFragmentInvalid, def.Name, wd.Name, err)
		}
		out = append(out, domain.Wrapper{
			Name:        wd.Name,
			Fragment:    def.Name,
			Command:     wd.Command,
			Args:        args,
			Aliases:     append([]string(nil), wd.Aliases...),
			Description: wd.Description,
		})
	}
	return out, nil
}
