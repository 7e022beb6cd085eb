// Package history is an in-memory session history with browser semantics:
// push truncates the forward stack, replace edits the current entry, and only
// back/forward notify pop listeners.
package history

import "strings"

// Location is one history entry.
type Location struct {
	Path     string
	RawQuery string
}

// ParseLocation splits "path?query#fragment". The fragment is dropped and an
// empty path becomes "/".
func ParseLocation(raw string) Location {
	raw, _, _ = strings.Cut(raw, "#")
	path, query, _ := strings.Cut(raw, "?")
	if path == "" {
		path = "/"
	}
	return Location{Path: path, RawQuery: query}
}

// String renders the location as it would appear in an address bar.
func (l Location) String() string {
	if l.RawQuery == "" {
		return l.Path
	}
	return l.Path + "?" + l.RawQuery
}

// Memory is a history stack. It is not safe for concurrent use; it belongs to
// the loop goroutine like the rest of the client.
type Memory struct {
	entries   []Location
	index     int
	listeners map[int]func(Location)
	nextID    int
}

// NewMemory starts a history at initial.
func NewMemory(initial string) *Memory {
	return &Memory{
		entries:   []Location{ParseLocation(initial)},
		listeners: make(map[int]func(Location)),
	}
}

// Location returns the current entry.
func (m *Memory) Location() Location {
	return m.entries[m.index]
}

// Push appends a new entry after the current one and drops the forward stack.
func (m *Memory) Push(url string) {
	m.entries = append(m.entries[:m.index+1], ParseLocation(url))
	m.index++
}

// Replace overwrites the current entry.
func (m *Memory) Replace(url string) {
	m.entries[m.index] = ParseLocation(url)
}

// Len reports the number of entries.
func (m *Memory) Len() int {
	return len(m.entries)
}

// CanGoBack reports whether Back would move.
func (m *Memory) CanGoBack() bool { return m.index > 0 }

// CanGoForward reports whether Forward would move.
func (m *Memory) CanGoForward() bool { return m.index < len(m.entries)-1 }

// Back moves one entry back and notifies pop listeners.
func (m *Memory) Back() bool {
	if !m.CanGoBack() {
		return false
	}
	m.index--
	m.pop()
	return true
}

// Forward moves one entry forward and notifies pop listeners.
func (m *Memory) Forward() bool {
	if !m.CanGoForward() {
		return false
	}
	m.index++
	m.pop()
	return true
}

// OnPop registers fn for back/forward moves and returns a function that
// removes it.
func (m *Memory) OnPop(fn func(Location)) func() {
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() { delete(m.listeners, id) }
}

func (m *Memory) pop() {
	loc := m.Location()
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.listeners[id]; ok {
			fn(loc)
		}
	}
}
