// Package toast keeps the single transient notification shown at the bottom
// of the page.
package toast

import (
	"sync"
	"time"
)

// AutoRemoveDelay is how long a toast stays up.
const AutoRemoveDelay = 3 * time.Second

// Kind selects the toast styling.
type Kind string

const (
	Success Kind = "success"
	Info    Kind = "info"
	Error   Kind = "error"
)

// Toast is one notification.
type Toast struct {
	Message string
	Kind    Kind
	Shown   time.Time
}

// Center holds the current toast. A new toast replaces the previous one.
type Center struct {
	mu      sync.Mutex
	current *Toast
	now     func() time.Time
	ttl     time.Duration
}

// NewCenter returns an empty center. A nil clock means time.Now.
func NewCenter(now func() time.Time) *Center {
	if now == nil {
		now = time.Now
	}
	return &Center{now: now, ttl: AutoRemoveDelay}
}

// Show replaces the current toast.
func (c *Center) Show(message string, kind Kind) {
	if kind == "" {
		kind = Info
	}
	c.mu.Lock()
	c.current = &Toast{Message: message, Kind: kind, Shown: c.now()}
	c.mu.Unlock()
}

// Current returns the toast if it has not expired.
func (c *Center) Current() (Toast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Toast{}, false
	}
	if c.now().Sub(c.current.Shown) >= c.ttl {
		c.current = nil
		return Toast{}, false
	}
	return *c.current, true
}

// Dismiss removes the current toast.
func (c *Center) Dismiss() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
