package profile

import (
	"sort"
	"sync"

	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/ports"
)

// Registry is the session's function table: wrapper and alias names mapped
// to the wrapper they invoke. Names match case-insensitively. Later
// registrations replace earlier ones, the way redefining a function does in
// the host shell.
type Registry struct {
	mu    sync.RWMutex
	names map[string]entry
}

// entry keeps the spelling a name was registered with.
type entry struct {
	name    string
	wrapper domain.Wrapper
}

// NewRegistry returns an empty function table.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]entry)}
}

// Register adds w under its name and aliases. It reports false when any of
// those names was already defined.
func (r *Registry) Register(w domain.Wrapper) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	fresh := true
	for _, name := range append([]string{w.Name}, w.Aliases...) {
		key := domain.NormalizeCommandName(name)
		if _, exists := r.names[key]; exists {
			fresh = false
		}
		r.names[key] = entry{name: name, wrapper: w}
	}
	return fresh
}

// Lookup finds a wrapper by name or alias.
func (r *Registry) Lookup(name string) (domain.Wrapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.names[domain.NormalizeCommandName(name)]
	return e.wrapper, ok
}

// RemoveFragment drops every name registered by fragment.
func (r *Registry) RemoveFragment(fragment string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for key, e := range r.names {
		if e.wrapper.Fragment == fragment {
			delete(r.names, key)
			removed = append(removed, e.name)
		}
	}
	sort.Strings(removed)
	return removed
}

// Names lists every registered function and alias name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for _, e := range r.names {
		out = append(out, e.name)
	}
	sort.Strings(out)
	return out
}

// Wrappers lists registered wrappers once each, ordered by fragment then name.
func (r *Registry) Wrappers() []domain.Wrapper {
	r.mu.RLock()
	seen := make(map[string]bool, len(r.names))
	out := make([]domain.Wrapper, 0, len(r.names))
	for _, e := range r.names {
		w := e.wrapper
		key := w.Fragment + "\x00" + w.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fragment != out[j].Fragment {
			return out[i].Fragment < out[j].Fragment
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Resolve implements ports.CommandResolver: registered functions count as
// callable commands.
func (r *Registry) Resolve(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

var _ ports.CommandResolver = (*Registry)(nil)
