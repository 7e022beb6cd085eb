// Package routectx carries the matched route (path, params, query) to the
// code that needs it after the router has resolved a location.
package routectx

import (
	"sync"

	"github.com/google/uuid"

	"github.com/five82/shopfront/internal/querystring"
)

// Context describes the active route.
type Context struct {
	// Path is the application path, without the base path or query.
	Path string
	// Pattern is the registered pattern that matched, "" for not found.
	Pattern string
	Params  map[string]string
	Query   querystring.Params
}

// Param returns a path parameter, or "".
func (c Context) Param(name string) string { return c.Params[name] }

// Listener observes context changes.
type Listener func(current, previous Context)

// Service holds the current context.
type Service struct {
	mu        sync.RWMutex
	current   Context
	listeners map[string]Listener
	order     []string
}

// NewService returns a service with an empty context.
func NewService() *Service {
	return &Service{listeners: make(map[string]Listener)}
}

// Set replaces the context and notifies listeners.
func (s *Service) Set(ctx Context) {
	s.mu.Lock()
	prev := s.current
	s.current = ctx
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, prev)
	}
}

// Current returns the active context.
func (s *Service) Current() Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Param returns a parameter of the active route.
func (s *Service) Param(name string) string {
	return s.Current().Param(name)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Service) Subscribe(fn Listener) func() {
	id := uuid.NewString()
	s.mu.Lock()
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for j, other := range s.order {
			if other == id {
				s.order = append(s.order[:j], s.order[j+1:]...)
				break
			}
		}
	}
}
