package service

import (
	"sort"
	"sync"
	"time"
)

// Cooldowns tracks providers that recently failed. A provider marked failed is
// skipped until its cooldown period has passed or a later call succeeds.
type Cooldowns struct {
	period time.Duration
	now    func() time.Time

	mu    sync.Mutex
	until map[string]time.Time
}

// NewCooldowns creates a tracker with a fixed cooldown period. A period of
// zero or less disables cooldowns.
func NewCooldowns(period time.Duration) *Cooldowns {
	return &Cooldowns{
		period: period,
		now:    time.Now,
		until:  make(map[string]time.Time),
	}
}

// Active reports whether name is cooling down.
func (c *Cooldowns) Active(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	until, ok := c.until[name]
	if !ok {
		return false
	}
	if !c.now().Before(until) {
		delete(c.until, name)
		return false
	}
	return true
}

// Mark starts a cooldown for name.
func (c *Cooldowns) Mark(name string) {
	if c.period <= 0 {
		return
	}
	c.mu.Lock()
	c.until[name] = c.now().Add(c.period)
	c.mu.Unlock()
}

// Clear ends any cooldown for name.
func (c *Cooldowns) Clear(name string) {
	c.mu.Lock()
	delete(c.until, name)
	c.mu.Unlock()
}

// Snapshot returns the names currently cooling down, sorted.
func (c *Cooldowns) Snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := []string{}
	for name, until := range c.until {
		if now.Before(until) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
