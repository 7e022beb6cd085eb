package viewport

import "github.com/five82/shopfront/internal/dom"

// Visible answers whether el currently intersects the viewport under opts.
type Visible func(el dom.Element, opts Options) bool

// Tracker is the Platform used by the terminal host.
type Tracker struct {
	observers []*trackedObserver
}

type target struct {
	el      dom.Element
	visible bool
}

type trackedObserver struct {
	tracker  *Tracker
	callback func(Entry)
	opts     Options
	targets  []*target
	closed   bool
}

// NewObserver implements Platform.
func (t *Tracker) NewObserver(callback func(Entry), opts Options) PlatformObserver {
	o := &trackedObserver{tracker: t, callback: callback, opts: opts.withDefaults()}
	t.observers = append(t.observers, o)
	return o
}

// Observing reports how many elements are watched across all observers.
func (t *Tracker) Observing() int {
	n := 0
	for _, o := range t.observers {
		n += len(o.targets)
	}
	return n
}

// Update re-evaluates every watched element and delivers an entry for each
// visibility change. A newly observed element starts out not visible, so one
// that is already on screen is reported on the first Update.
func (t *Tracker) Update(visible Visible) {
	type delivery struct {
		o     *trackedObserver
		entry Entry
	}
	var pending []delivery
	for _, o := range t.observers {
		for _, tg := range o.targets {
			now := visible(tg.el, o.opts)
			if now == tg.visible {
				continue
			}
			tg.visible = now
			pending = append(pending, delivery{o: o, entry: Entry{Target: tg.el, Intersecting: now}})
		}
	}
	for _, d := range pending {
		if d.o.closed || !d.o.watching(d.entry.Target) {
			continue
		}
		d.o.callback(d.entry)
	}
}

func (o *trackedObserver) Observe(el dom.Element) {
	if o.closed || el.IsZero() || o.watching(el) {
		return
	}
	o.targets = append(o.targets, &target{el: el})
}

func (o *trackedObserver) Unobserve(el dom.Element) {
	for i, tg := range o.targets {
		if tg.el == el {
			o.targets = append(o.targets[:i], o.targets[i+1:]...)
			return
		}
	}
}

func (o *trackedObserver) Disconnect() {
	if o.closed {
		return
	}
	o.closed = true
	o.targets = nil
	obs := o.tracker.observers
	for i, other := range obs {
		if other == o {
			o.tracker.observers = append(obs[:i], obs[i+1:]...)
			break
		}
	}
}

func (o *trackedObserver) watching(el dom.Element) bool {
	for _, tg := range o.targets {
		if tg.el == el {
			return true
		}
	}
	return false
}
