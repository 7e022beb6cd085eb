package viewport

import (
	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/dom"
)

// Default observer options.
const (
	DefaultRootMargin = 3
	DefaultThreshold  = 0.1
)

// Options tune when an element counts as visible.
type Options struct {
	// RootMargin widens the visible window, in lines, on both sides.
	RootMargin int
	// Threshold is the fraction of the element that must be visible.
	Threshold float64
}

func (o Options) withDefaults() Options {
	if o.RootMargin <= 0 {
		o.RootMargin = DefaultRootMargin
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

// Entry reports a visibility change for one observed element.
type Entry struct {
	Target       dom.Element
	Intersecting bool
}

// Platform creates visibility observers.
type Platform interface {
	NewObserver(callback func(Entry), opts Options) PlatformObserver
}

// PlatformObserver watches any number of elements.
type PlatformObserver interface {
	Observe(el dom.Element)
	Unobserve(el dom.Element)
	Disconnect()
}

// Observer watches one element at a time and calls back when it enters the
// viewport.
type Observer struct {
	platform Platform
	opts     Options
	callback func()
	log      *zap.Logger

	po      PlatformObserver
	current dom.Element
}

// NewObserver returns an idle observer.
func NewObserver(platform Platform, callback func(), opts Options, logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{
		platform: platform,
		opts:     opts.withDefaults(),
		callback: callback,
		log:      logger,
	}
}

// Observe starts watching el. Observing the element already watched is a
// no-op; a different element replaces it.
func (o *Observer) Observe(el dom.Element) {
	if el.IsZero() {
		o.log.Warn("observe called without an element")
		return
	}
	if o.po != nil && o.current == el {
		return
	}
	if o.po != nil {
		o.po.Disconnect()
	}
	o.po = o.platform.NewObserver(o.onEntry, o.opts)
	o.po.Observe(el)
	o.current = el
}

// Unobserve stops watching el when it is the current element.
func (o *Observer) Unobserve(el dom.Element) {
	if o.po == nil || o.current != el {
		return
	}
	o.po.Unobserve(el)
	o.current = dom.Element{}
}

// Disconnect releases the platform observer.
func (o *Observer) Disconnect() {
	if o.po == nil {
		return
	}
	o.po.Disconnect()
	o.po = nil
	o.current = dom.Element{}
}

// Current returns the watched element.
func (o *Observer) Current() dom.Element { return o.current }

func (o *Observer) active() bool { return o.po != nil }

func (o *Observer) onEntry(e Entry) {
	if !e.Intersecting || e.Target != o.current {
		return
	}
	o.callback()
}
