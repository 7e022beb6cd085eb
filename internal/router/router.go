// Package router maps application paths to pages. A page is a render
// function that produces the markup for the #root mount point plus an
// optional initializer that runs after the markup is in place.
package router

import (
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/basepath"
	"github.com/five82/shopfront/internal/dom"
	"github.com/five82/shopfront/internal/eventbus"
	"github.com/five82/shopfront/internal/history"
	"github.com/five82/shopfront/internal/querystring"
	"github.com/five82/shopfront/internal/routectx"
)

// Render produces page markup.
type Render func() string

// Init runs after the page markup has been mounted.
type Init func(ctx routectx.Context)

// History is the session history the router reads and writes.
type History interface {
	Location() history.Location
	Push(url string)
	OnPop(fn func(history.Location)) func()
}

// Options configure a Router.
type Options struct {
	Document *dom.Document
	History  History
	Base     basepath.Resolver
	// Context receives the matched route before each initializer runs. A new
	// service is created when nil.
	Context *routectx.Service
	Bus     *eventbus.Bus
	Logger  *zap.Logger
}

type route struct {
	pattern string
	re      *regexp.Regexp
	keys    []string
	render  Render
	init    Init
}

// Router resolves the current location to a registered page.
type Router struct {
	doc      *dom.Document
	history  History
	base     basepath.Resolver
	ctx      *routectx.Service
	bus      *eventbus.Bus
	log      *zap.Logger
	routes   map[string]*route
	order    []*route
	notFound Render
	stopPop  func()
}

// New returns a router with no routes.
func New(opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Context == nil {
		opts.Context = routectx.NewService()
	}
	return &Router{
		doc:     opts.Document,
		history: opts.History,
		base:    opts.Base,
		ctx:     opts.Context,
		bus:     opts.Bus,
		log:     opts.Logger,
		routes:  make(map[string]*route),
	}
}

// Register adds a page for pattern. Segments starting with ":" capture a
// parameter. Registering a pattern again replaces its page but keeps its
// place in the matching order.
func (r *Router) Register(pattern string, render Render, init Init) {
	if existing, ok := r.routes[pattern]; ok {
		existing.render = render
		existing.init = init
		return
	}
	rt := compile(pattern)
	rt.render = render
	rt.init = init
	r.routes[pattern] = rt
	r.order = append(r.order, rt)
}

// SetNotFound sets the page shown when nothing matches.
func (r *Router) SetNotFound(render Render) {
	r.notFound = render
}

// Context returns the route context service.
func (r *Router) Context() *routectx.Service { return r.ctx }

// Current returns the active route context.
func (r *Router) Current() routectx.Context { return r.ctx.Current() }

// Navigate pushes path (which may carry a query) and resolves it.
func (r *Router) Navigate(path string) {
	r.history.Push(r.base.FullPath(path))
	r.Resolve()
}

// Resolve renders the page for the current location.
func (r *Router) Resolve() {
	loc := r.history.Location()
	appPath := r.base.AppPath(loc.Path)
	ctx := routectx.Context{
		Path:  appPath,
		Query: querystring.Parse(loc.RawQuery),
	}

	rt, params, ok := r.match(appPath)
	if !ok {
		r.log.Debug("no route matched", zap.String("path", appPath))
		r.ctx.Set(ctx)
		if r.notFound != nil {
			r.mount(r.notFound())
		}
		r.emit(ctx)
		return
	}

	ctx.Pattern = rt.pattern
	ctx.Params = params
	r.ctx.Set(ctx)
	r.mount(rt.render())
	if rt.init != nil {
		rt.init(ctx)
	}
	r.emit(ctx)
}

// Start wires link interception and back/forward handling, then resolves the
// initial location.
func (r *Router) Start() error {
	if err := r.doc.On("click", "[data-link]", r.onLink); err != nil {
		return err
	}
	if r.stopPop == nil {
		r.stopPop = r.history.OnPop(func(history.Location) { r.Resolve() })
	}
	r.Resolve()
	return nil
}

// Stop undoes Start.
func (r *Router) Stop() {
	r.doc.Off("click", "[data-link]")
	if r.stopPop != nil {
		r.stopPop()
		r.stopPop = nil
	}
}

func (r *Router) onLink(ev *dom.Event) {
	ev.PreventDefault()
	href := ev.CurrentTarget.Attr("href")
	if href == "" {
		return
	}
	if strings.Contains(href, "://") {
		u, err := url.Parse(href)
		if err != nil {
			r.log.Warn("ignoring malformed link", zap.String("href", href), zap.Error(err))
			return
		}
		href = u.RequestURI()
	}
	r.Navigate(r.base.AppPath(href))
}

func (r *Router) match(path string) (*route, map[string]string, bool) {
	if rt, ok := r.routes[path]; ok {
		return rt, map[string]string{}, true
	}
	for _, rt := range r.order {
		if len(rt.keys) == 0 {
			continue
		}
		m := rt.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		params := make(map[string]string, len(rt.keys))
		for i, key := range rt.keys {
			value, err := url.PathUnescape(m[i+1])
			if err != nil {
				value = m[i+1]
			}
			params[key] = value
		}
		return rt, params, true
	}
	return nil, nil, false
}

func (r *Router) mount(markup string) {
	if err := r.doc.SetRootHTML(markup); err != nil {
		r.log.Error("mount page", zap.Error(err))
	}
}

func (r *Router) emit(ctx routectx.Context) {
	if r.bus != nil {
		r.bus.Emit(eventbus.RouteChanged, ctx)
	}
}

func compile(pattern string) *route {
	segments := strings.Split(pattern, "/")
	var keys []string
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			keys = append(keys, seg[1:])
			segments[i] = "([^/]+)"
			continue
		}
		segments[i] = regexp.QuoteMeta(seg)
	}
	return &route{
		pattern: pattern,
		re:      regexp.MustCompile("^" + strings.Join(segments, "/") + "$"),
		keys:    keys,
	}
}
