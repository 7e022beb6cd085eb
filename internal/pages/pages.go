package pages

import (
	"context"
	"html/template"
	"strconv"

	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/dom"
	"github.com/five82/shopfront/internal/eventbus"
	"github.com/five82/shopfront/internal/history"
	"github.com/five82/shopfront/internal/querystring"
	"github.com/five82/shopfront/internal/router"
	"github.com/five82/shopfront/internal/routectx"
	"github.com/five82/shopfront/internal/state"
	"github.com/five82/shopfront/internal/viewport"
)

// Route patterns.
const (
	ListPath   = "/"
	DetailPath = "/product/:productId"
)

// History is the part of the session history the pages use directly.
type History interface {
	Location() history.Location
	Replace(url string)
	Back() bool
}

// Options wire the pages to the rest of the client.
type Options struct {
	// Context bounds every query the pages start.
	Context  context.Context
	Document *dom.Document
	Router   *router.Router
	History  History
	Bus      *eventbus.Bus
	Cart     *state.Cart
	List     *state.ProductList
	Detail   *state.Detail
	// Platform reports trigger visibility for infinite scroll.
	Platform viewport.Platform
	Logger   *zap.Logger
}

var cartEvents = []string{eventbus.CartAdded, eventbus.CartRemoved, eventbus.CartUpdated, eventbus.CartCleared}

type page int

const (
	noPage page = iota
	listPage
	detailPage
)

// App renders the storefront pages and handles their events.
type App struct {
	ctx      context.Context
	doc      *dom.Document
	router   *router.Router
	history  History
	bus      *eventbus.Bus
	cart     *state.Cart
	list     *state.ProductList
	detail   *state.Detail
	platform viewport.Platform
	log      *zap.Logger

	tmpl   *template.Template
	badge  *Badge
	modal  *CartModal
	scroll *viewport.InfiniteScroll
	active page
	// search holds the search box text until Enter applies it.
	search string
	subs   map[string]string
}

// New parses the templates and returns the pages. Call Mount to register
// routes and events.
func New(opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	a := &App{
		ctx:      opts.Context,
		doc:      opts.Document,
		router:   opts.Router,
		history:  opts.History,
		bus:      opts.Bus,
		cart:     opts.Cart,
		list:     opts.List,
		detail:   opts.Detail,
		platform: opts.Platform,
		log:      opts.Logger,
		tmpl:     tmpl,
	}
	a.badge = NewBadge(a.doc, a.cart.Count, a.log)
	a.modal = newCartModal(a.doc, a.cart, tmpl, a.log)
	a.list.SetQueryWriter(urlWriter{history: a.history})
	return a, nil
}

// Mount registers the routes, binds the delegated events and subscribes to
// cart changes.
func (a *App) Mount() error {
	a.router.Register(ListPath, a.RenderList, a.InitList)
	a.router.Register(DetailPath, a.RenderDetail, a.InitDetail)
	a.router.SetNotFound(a.RenderNotFound)
	if err := a.bindEvents(); err != nil {
		return err
	}
	if a.bus != nil && a.subs == nil {
		a.subs = make(map[string]string, len(cartEvents))
		for _, ev := range cartEvents {
			a.subs[ev] = a.bus.On(ev, a.onCartChanged)
		}
	}
	return nil
}

// Unmount unbinds the page events, drops the bus subscriptions and the
// infinite scroll, and discards list pages still in flight.
func (a *App) Unmount() {
	a.unbindEvents()
	for ev, id := range a.subs {
		a.bus.Off(ev, id)
	}
	a.subs = nil
	a.destroyScroll()
	a.active = noPage
	a.list.SetRender(nil)
	a.list.Reset()
}

// Modal returns the cart overlay.
func (a *App) Modal() *CartModal { return a.modal }

// Scroll returns the list page's infinite scroll, or nil on other pages.
func (a *App) Scroll() *viewport.InfiniteScroll { return a.scroll }

// RenderList is the list page markup.
func (a *App) RenderList() string {
	return a.markup("list", newListView(a.list.State(), a.search, a.cart.Count()))
}

// InitList restores the cart, reads the filters from the URL and starts the
// first page and category loads.
func (a *App) InitList(rc routectx.Context) {
	a.active = listPage
	a.cart.Load()
	a.list.InitializeFromURL(rc.Query)
	a.search = a.list.Filters().Search
	a.list.SetRender(a.renderList)
	if a.scroll == nil {
		a.scroll = viewport.NewInfiniteScroll(func() { a.list.LoadMore(a.ctx) }, viewport.ScrollOptions{
			Platform:  a.platform,
			IsLoading: a.list.IsLoading,
			HasMore:   a.list.HasMore,
			Logger:    a.log,
		})
	}
	a.renderList()
	a.list.Fetch(a.ctx, false)
	a.list.FetchCategories(a.ctx)
}

// RenderDetail is the detail page markup.
func (a *App) RenderDetail() string {
	return a.markup("detail", newDetailView(a.detail.State(), a.cart.Count()))
}

// InitDetail restores the cart and loads the product named in the route.
func (a *App) InitDetail(rc routectx.Context) {
	a.active = detailPage
	a.destroyScroll()
	a.cart.Load()
	id := rc.Param("productId")
	if id == "" {
		a.log.Error("product id missing from route", zap.String("path", rc.Path))
		return
	}
	a.detail.SetRender(a.renderDetail)
	a.detail.OnQuantity(a.writeQuantity)
	a.detail.FetchDetail(a.ctx, id)
}

// RenderNotFound is the fallback page.
func (a *App) RenderNotFound() string {
	a.active = noPage
	a.destroyScroll()
	return a.markup("not-found", nil)
}

func (a *App) renderList() {
	if a.active != listPage {
		return
	}
	a.mount(a.RenderList())
	if a.scroll != nil {
		a.scroll.UpdateTrigger(a.doc, viewport.DefaultTriggerSelector)
	}
}

func (a *App) renderDetail() {
	if a.active != detailPage {
		return
	}
	a.mount(a.RenderDetail())
}

func (a *App) writeQuantity(q int) {
	if in := a.doc.QuerySelector("#quantity-input"); !in.IsZero() {
		in.SetValue(strconv.Itoa(q))
	}
}

func (a *App) onCartChanged(any) {
	a.badge.Update()
	if a.modal.IsOpen() {
		a.modal.Render()
	}
}

func (a *App) destroyScroll() {
	if a.scroll != nil {
		a.scroll.Destroy()
		a.scroll = nil
	}
}

func (a *App) mount(markup string) {
	if err := a.doc.SetRootHTML(markup); err != nil {
		a.log.Error("mount page", zap.Error(err))
	}
}

func (a *App) markup(name string, data any) string {
	out, err := execute(a.tmpl, name, data)
	if err != nil {
		a.log.Error("render page", zap.String("page", name), zap.Error(err))
		return ""
	}
	return out
}

// navigateWithSort goes to path, carrying the current sort order over.
func (a *App) navigateWithSort(path string) {
	if sort := querystring.Parse(a.history.Location().RawQuery).Get(state.KeySort); sort != "" {
		path += "?" + querystring.Encode(querystring.Params{state.KeySort: sort})
	}
	a.router.Navigate(path)
}

// urlWriter mirrors the list filters into the current URL without adding a
// history entry.
type urlWriter struct {
	history History
}

func (w urlWriter) ReplaceQuery(params querystring.Params) {
	loc := w.history.Location()
	loc.RawQuery = querystring.Encode(params)
	w.history.Replace(loc.String())
}
