package viewport

import (
	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/dom"
)

// DefaultTriggerSelector marks the element at the end of a paged list.
const DefaultTriggerSelector = ".infinite-scroll-trigger"

// Querier finds the trigger element.
type Querier interface {
	QuerySelector(sel string) dom.Element
}

// ScrollOptions configure an InfiniteScroll.
type ScrollOptions struct {
	Platform Platform
	Observer Options
	// IsLoading defaults to "never loading".
	IsLoading func() bool
	// HasMore defaults to "always more".
	HasMore func() bool
	// Disabled starts the controller disabled.
	Disabled bool
	Logger   *zap.Logger
}

// InfiniteScroll requests the next page when the trigger element scrolls
// into view.
type InfiniteScroll struct {
	loadMore  func()
	isLoading func() bool
	hasMore   func() bool
	enabled   bool
	obs       *Observer
	trigger   dom.Element
	log       *zap.Logger
}

// NewInfiniteScroll returns a controller that calls loadMore. Call Init once
// the trigger element is in the page.
func NewInfiniteScroll(loadMore func(), opts ScrollOptions) *InfiniteScroll {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.IsLoading == nil {
		opts.IsLoading = func() bool { return false }
	}
	if opts.HasMore == nil {
		opts.HasMore = func() bool { return true }
	}
	s := &InfiniteScroll{
		loadMore:  loadMore,
		isLoading: opts.IsLoading,
		hasMore:   opts.HasMore,
		enabled:   !opts.Disabled,
		log:       opts.Logger,
	}
	s.obs = NewObserver(opts.Platform, s.onEnter, opts.Observer, opts.Logger)
	return s
}

// Init looks up the trigger and watches it. An empty selector means
// DefaultTriggerSelector. When the trigger is gone, observation stops.
func (s *InfiniteScroll) Init(q Querier, selector string) {
	if selector == "" {
		selector = DefaultTriggerSelector
	}
	el := q.QuerySelector(selector)
	if el.IsZero() {
		if !s.trigger.IsZero() {
			s.obs.Disconnect()
			s.trigger = dom.Element{}
		}
		s.log.Debug("infinite scroll trigger not found", zap.String("selector", selector))
		return
	}
	if !s.trigger.IsZero() && s.trigger != el {
		s.obs.Unobserve(s.trigger)
	}
	s.trigger = el
	s.obs.Observe(el)
}

// UpdateTrigger re-targets after the page was rendered again.
func (s *InfiniteScroll) UpdateTrigger(q Querier, selector string) {
	s.Init(q, selector)
}

// Enable resumes observation.
func (s *InfiniteScroll) Enable() {
	s.enabled = true
	if !s.trigger.IsZero() && !s.isLoading() && s.hasMore() {
		s.obs.Observe(s.trigger)
	}
}

// Disable pauses observation.
func (s *InfiniteScroll) Disable() {
	s.enabled = false
	if !s.trigger.IsZero() {
		s.obs.Unobserve(s.trigger)
	}
}

// Enabled reports whether the controller reacts to the trigger.
func (s *InfiniteScroll) Enabled() bool { return s.enabled }

// Trigger returns the element being watched.
func (s *InfiniteScroll) Trigger() dom.Element { return s.trigger }

// Destroy stops observation for good.
func (s *InfiniteScroll) Destroy() {
	s.obs.Disconnect()
	s.trigger = dom.Element{}
	s.enabled = false
}

func (s *InfiniteScroll) onEnter() {
	if s.enabled && !s.isLoading() && s.hasMore() {
		s.loadMore()
		return
	}
	if !s.hasMore() {
		s.log.Debug("infinite scroll exhausted")
		s.obs.Disconnect()
	}
}
