package dom

import (
	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
)

// Event is a DOM event travelling from Target up to the document.
type Event struct {
	Type string
	// Target is the element the event originated on.
	Target Element
	// CurrentTarget is the element that matched the binding's selector. It is
	// set by Dispatch before each handler runs.
	CurrentTarget Element
	// Key is set for keydown events ("Enter", "Escape").
	Key string
	// Value is the target's value for input and change events.
	Value string

	prevented bool
}

// PreventDefault cancels the host's default action (following a link).
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// Handler reacts to a dispatched event.
type Handler func(ev *Event)

type binding struct {
	eventType string
	selector  string
	match     cascadia.Selector
	handler   Handler
}

// On binds handler to events of eventType whose target is inside an element
// matching selector. A (type, selector) pair holds one handler: binding the
// same pair again replaces the previous handler and keeps its position.
func (d *Document) On(eventType, selector string, handler Handler) error {
	match, err := d.compile(selector)
	if err != nil {
		return err
	}
	for _, b := range d.bindings {
		if b.eventType == eventType && b.selector == selector {
			b.handler = handler
			return nil
		}
	}
	d.bindings = append(d.bindings, &binding{
		eventType: eventType,
		selector:  selector,
		match:     match,
		handler:   handler,
	})
	return nil
}

// Off removes the binding for (eventType, selector).
func (d *Document) Off(eventType, selector string) {
	for i, b := range d.bindings {
		if b.eventType == eventType && b.selector == selector {
			d.bindings = append(d.bindings[:i], d.bindings[i+1:]...)
			return
		}
	}
}

func (d *Document) bindingCount(eventType string) int {
	n := 0
	for _, b := range d.bindings {
		if b.eventType == eventType {
			n++
		}
	}
	return n
}

// Listens reports whether a binding for eventType matches el itself, not
// just one of its ancestors. The terminal host uses it to make clickable
// cards focusable.
func (d *Document) Listens(eventType string, el Element) bool {
	if el.IsZero() {
		return false
	}
	for _, b := range d.bindings {
		if b.eventType == eventType && b.match.Match(el.node) {
			return true
		}
	}
	return false
}

// Dispatch delivers ev to every matching binding in registration order and
// reports whether the default action should still happen.
func (d *Document) Dispatch(ev *Event) bool {
	if ev.Target.IsZero() {
		return true
	}
	if ev.Value == "" {
		ev.Value = ev.Target.Value()
	}
	bindings := make([]*binding, 0, len(d.bindings))
	for _, b := range d.bindings {
		if b.eventType == ev.Type {
			bindings = append(bindings, b)
		}
	}
	for _, b := range bindings {
		matched := closest(ev.Target, b.match)
		if matched.IsZero() {
			continue
		}
		ev.CurrentTarget = matched
		d.call(b, ev)
	}
	ev.CurrentTarget = Element{}
	return !ev.prevented
}

func (d *Document) call(b *binding, ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("event handler failed",
				zap.String("type", b.eventType),
				zap.String("selector", b.selector),
				zap.Any("panic", r),
			)
		}
	}()
	b.handler(ev)
}

func closest(e Element, match cascadia.Selector) Element {
	for cur := e; !cur.IsZero(); cur = cur.Parent() {
		if match.Match(cur.node) {
			return cur
		}
	}
	return Element{}
}
