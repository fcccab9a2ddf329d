// Package fragment tracks fragment load state and reads fragment definitions.
package fragment

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/ports"
)

// Guard records which fragments completed initialization in this session.
// A flag only moves NotLoaded -> Loaded; Clear is the only way back.
type Guard struct {
	mu     sync.RWMutex
	loaded map[string]time.Time
	now    func() time.Time
}

// NewGuard returns a guard with no fragments loaded.
func NewGuard() *Guard {
	return &Guard{
		loaded: make(map[string]time.Time),
		now:    time.Now,
	}
}

var (
	defaultGuardOnce sync.Once
	defaultGuard     *Guard
)

// Default returns the process-wide guard.
func Default() *Guard {
	defaultGuardOnce.Do(func() {
		defaultGuard = NewGuard()
	})
	return defaultGuard
}

// IsLoaded reports whether name was marked loaded. Blank names are never loaded.
func (g *Guard) IsLoaded(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.loaded[name]
	return ok
}

// MarkLoaded flags name as initialized. Marking twice keeps the first timestamp.
func (g *Guard) MarkLoaded(name string) {
	if strings.TrimSpace(name) == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.loaded[name]; !ok {
		g.loaded[name] = g.now()
	}
}

// Clear resets name to not loaded.
func (g *Guard) Clear(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.loaded, name)
}

// ClearAll resets every fragment.
func (g *Guard) ClearAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loaded = make(map[string]time.Time)
}

// GetLoadGuard returns a predicate bound to name. It reads the current flag
// on every call, so a fragment can start with `if guard() { return }`.
func (g *Guard) GetLoadGuard(name string) func() bool {
	return func() bool {
		return g.IsLoaded(name)
	}
}

// Loaded lists loaded fragments sorted by name.
func (g *Guard) Loaded() []domain.FragmentState {
	g.mu.RLock()
	out := make([]domain.FragmentState, 0, len(g.loaded))
	for name, at := range g.loaded {
		out = append(out, domain.FragmentState{Name: name, Loaded: true, LoadedAt: at})
	}
	g.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var _ ports.LoadGuard = (*Guard)(nil)
