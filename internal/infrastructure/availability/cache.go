// Package availability answers "can this external command be invoked?" with
// memoization, so wrapper functions can check their tool on every call without
// paying for a PATH scan each time.
package availability

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/pkg/logger"
	"github.com/bolens/ps-profile/internal/ports"
)

// Cache memoizes resolver outcomes per case-insensitive command name.
// Positive and negative outcomes are cached alike and stay fresh until
// cleared, or until the optional TTL elapses.
type Cache struct {
	resolver ports.CommandResolver
	ttl      time.Duration
	now      func() time.Time
	logger   ports.Logger

	mu      sync.RWMutex
	records map[string]domain.CommandRecord
	// gens is bumped per key by Clear and epoch by ClearAll, so a probe that
	// started before a clear of its own key does not write its outcome back.
	gens  map[string]uint64
	epoch uint64

	flight singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL bounds record freshness. Zero or negative keeps records until cleared.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger routes probe diagnostics to l.
func WithLogger(l ports.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds an empty cache backed by resolver.
func New(resolver ports.CommandResolver, opts ...Option) *Cache {
	if resolver == nil {
		resolver = NewPathResolver()
	}
	c := &Cache{
		resolver: resolver,
		ttl:      domain.DefaultAvailabilityTTL,
		now:      time.Now,
		logger:   logger.Nop(),
		records:  make(map[string]domain.CommandRecord),
		gens:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default returns the process-wide cache backed by the host PATH.
func Default() *Cache {
	defaultOnce.Do(func() {
		defaultCache = New(NewPathResolver())
	})
	return defaultCache
}

// IsAvailable reports whether name resolves, probing at most once per
// freshness window. Empty names are never available and never cached.
func (c *Cache) IsAvailable(name string) bool {
	spelled := strings.TrimSpace(name)
	key := domain.NormalizeCommandName(spelled)
	if key == "" {
		return false
	}
	if rec, ok := c.Lookup(key); ok {
		return rec.Available
	}

	v, _, _ := c.flight.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		rec, ok := c.records[key]
		gen, epoch := c.gens[key], c.epoch
		c.mu.RUnlock()
		if ok && rec.Fresh(c.now(), c.ttl) {
			return rec.Available, nil
		}

		available := c.probe(spelled)

		c.mu.Lock()
		if c.gens[key] == gen && c.epoch == epoch {
			c.records[key] = domain.CommandRecord{
				Name:       key,
				Available:  available,
				ResolvedAt: c.now(),
			}
		}
		c.mu.Unlock()
		return available, nil
	})
	return v.(bool)
}

// Lookup returns the cached record for name without probing.
// Stale records are reported as missing.
func (c *Cache) Lookup(name string) (domain.CommandRecord, bool) {
	key := domain.NormalizeCommandName(name)
	if key == "" {
		return domain.CommandRecord{}, false
	}
	c.mu.RLock()
	rec, ok := c.records[key]
	c.mu.RUnlock()
	if !ok || !rec.Fresh(c.now(), c.ttl) {
		return domain.CommandRecord{}, false
	}
	return rec, true
}

// Clear drops the record for name; the next IsAvailable probes again.
func (c *Cache) Clear(name string) {
	key := domain.NormalizeCommandName(name)
	if key == "" {
		return
	}
	c.mu.Lock()
	delete(c.records, key)
	c.gens[key]++
	c.mu.Unlock()
	c.flight.Forget(key)
	c.logger.Debug("availability cleared", map[string]interface{}{"command": key})
}

// ClearAll drops every record.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.records))
	for key := range c.records {
		keys = append(keys, key)
	}
	c.records = make(map[string]domain.CommandRecord)
	c.gens = make(map[string]uint64)
	c.epoch++
	c.mu.Unlock()
	for _, key := range keys {
		c.flight.Forget(key)
	}
	c.logger.Debug("availability cache reset", map[string]interface{}{"entries": len(keys)})
}

// Records returns a snapshot of all records, stale ones included, sorted by name.
func (c *Cache) Records() []domain.CommandRecord {
	c.mu.RLock()
	out := make([]domain.CommandRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports the number of stored records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// TTL exposes the configured staleness horizon.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) probe(name string) (available bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("availability probe failed", map[string]interface{}{
				"command": name,
				"panic":   r,
			})
			available = false
		}
	}()
	available = c.resolver.Resolve(name)
	c.logger.Debug("availability probed", map[string]interface{}{
		"command":   name,
		"available": available,
	})
	return available
}

var _ ports.AvailabilityCache = (*Cache)(nil)
