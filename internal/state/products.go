package state

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/eventbus"
	"github.com/five82/shopfront/internal/loop"
	"github.com/five82/shopfront/internal/querystring"
)

// Page size bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filter keys, shared by the query string and FilterPatch.
const (
	KeyPage      = "page"
	KeyLimit     = "limit"
	KeySearch    = "search"
	KeyCategory1 = "category1"
	KeyCategory2 = "category2"
	KeySort      = "sort"
)

// Filters select which products the list shows.
type Filters struct {
	Page      int
	Limit     int
	Search    string
	Category1 string
	Category2 string
	Sort      string
}

// DefaultFilters is the first page, 20 per page, cheapest first.
func DefaultFilters() Filters {
	return Filters{Page: 1, Limit: DefaultLimit, Sort: catalog.SortPriceAsc}
}

// Params renders the filters for the address bar. Empty values are dropped
// when encoded.
func (f Filters) Params() querystring.Params {
	return querystring.Params{
		KeyPage:      strconv.Itoa(f.Page),
		KeyLimit:     strconv.Itoa(f.Limit),
		KeySearch:    f.Search,
		KeyCategory1: f.Category1,
		KeyCategory2: f.Category2,
		KeySort:      f.Sort,
	}
}

func (f Filters) query() catalog.ListQuery {
	return catalog.ListQuery{
		Page:      f.Page,
		Limit:     f.Limit,
		Search:    f.Search,
		Category1: f.Category1,
		Category2: f.Category2,
		Sort:      f.Sort,
	}
}

// FilterPatch changes the keys it holds. A key mapped to "" clears that
// filter; absent keys are left alone.
type FilterPatch map[string]string

// apply merges patch into f. The limit is clamped and an unknown sort falls
// back to the default.
func (f Filters) apply(patch map[string]string) Filters {
	for key, value := range patch {
		value = strings.TrimSpace(value)
		switch key {
		case KeyPage:
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				f.Page = n
			}
		case KeyLimit:
			f.Limit = clampLimit(value)
		case KeySearch:
			f.Search = value
		case KeyCategory1:
			f.Category1 = value
		case KeyCategory2:
			f.Category2 = value
		case KeySort:
			if catalog.ValidSort(value) {
				f.Sort = value
			} else {
				f.Sort = catalog.SortPriceAsc
			}
		}
	}
	return f
}

func clampLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// QueryWriter mirrors the filters into the address bar without adding a
// history entry.
type QueryWriter interface {
	ReplaceQuery(params querystring.Params)
}

// ProductListState is a snapshot of the list.
type ProductListState struct {
	Products          []catalog.Product
	IsLoading         bool
	Error             error
	TotalCount        int
	Filters           Filters
	Categories        catalog.Categories
	CategoriesLoading bool
}

// ProductListOptions configure a ProductList.
type ProductListOptions struct {
	API catalog.Querier
	// Limit is the page size used when the address bar names none. Zero
	// means DefaultLimit.
	Limit  int
	Loop   loop.Loop
	Query  QueryWriter
	Bus    *eventbus.Bus
	Logger *zap.Logger
}

// ProductList is the paged product list behind the home page.
type ProductList struct {
	state  ProductListState
	api    catalog.Querier
	loop   loop.Loop
	query  QueryWriter
	bus    *eventbus.Bus
	log    *zap.Logger
	render func()
	// defaults are the filters a fresh list starts from.
	defaults Filters
	// appendFailed is set while Error comes from a next-page fetch.
	appendFailed bool

	// seq numbers every fetch; replaceSeq is the newest fetch that replaces
	// the list rather than appending to it.
	seq        uint64
	replaceSeq uint64
}

// NewProductList returns a list in its initial loading state.
func NewProductList(opts ProductListOptions) *ProductList {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	defaults := DefaultFilters()
	if opts.Limit > 0 {
		defaults.Limit = min(opts.Limit, MaxLimit)
	}
	return &ProductList{
		state:    ProductListState{IsLoading: true, Filters: defaults},
		api:      opts.API,
		loop:     opts.Loop,
		query:    opts.Query,
		bus:      opts.Bus,
		log:      opts.Logger,
		render:   func() {},
		defaults: defaults,
	}
}

// SetRender installs the page's render callback. nil disables rendering.
func (s *ProductList) SetRender(render func()) {
	if render == nil {
		render = func() {}
	}
	s.render = render
}

// SetQueryWriter replaces the address bar writer.
func (s *ProductList) SetQueryWriter(w QueryWriter) { s.query = w }

// State returns a snapshot.
func (s *ProductList) State() ProductListState {
	snap := s.state
	if len(s.state.Products) > 0 {
		snap.Products = make([]catalog.Product, len(s.state.Products))
		copy(snap.Products, s.state.Products)
	}
	return snap
}

// Filters returns the active filters.
func (s *ProductList) Filters() Filters { return s.state.Filters }

// HasMore reports whether more pages exist.
func (s *ProductList) HasMore() bool {
	return len(s.state.Products) < s.state.TotalCount
}

// IsLoading reports whether a fetch is outstanding.
func (s *ProductList) IsLoading() bool { return s.state.IsLoading }

// Find returns a loaded product by id.
func (s *ProductList) Find(id string) (catalog.Product, bool) {
	for _, p := range s.state.Products {
		if p.ProductID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

// InitializeFromURL merges query values over the list's default filters. The page
// always restarts at 1.
func (s *ProductList) InitializeFromURL(query querystring.Params) {
	patch := make(map[string]string, len(query))
	for _, key := range []string{KeyLimit, KeySearch, KeyCategory1, KeyCategory2, KeySort} {
		if value, ok := query[key]; ok {
			patch[key] = value
		}
	}
	f := s.defaults.apply(patch)
	f.Page = 1
	s.state.Filters = f
}

// Fetch loads the current page. With appendPage the results extend the list;
// otherwise they replace it.
func (s *ProductList) Fetch(ctx context.Context, appendPage bool) {
	s.seq++
	token := s.seq
	if !appendPage {
		s.replaceSeq = token
	}

	s.state.IsLoading = true
	s.state.Error = nil
	s.render()

	q := s.state.Filters.query()
	api := s.api
	s.loop.Go(func() func() {
		list, err := api.QueryProducts(ctx, q)
		return func() { s.complete(token, appendPage, list, err) }
	})
}

func (s *ProductList) complete(token uint64, appendPage bool, list catalog.ProductList, err error) {
	if token < s.replaceSeq {
		s.log.Debug("discarding stale product page", zap.Uint64("token", token), zap.Uint64("newest", s.replaceSeq))
		return
	}

	if err != nil {
		s.log.Warn("fetch products", zap.Error(err), zap.Bool("append", appendPage))
		s.state.Error = err
		s.appendFailed = appendPage
	} else {
		s.appendFailed = false
		if appendPage {
			s.state.Products = append(s.state.Products, list.Products...)
		} else {
			s.state.Products = list.Products
		}
		s.state.TotalCount = list.Pagination.Total
	}
	if token == s.seq {
		s.state.IsLoading = false
	}
	s.render()

	if err == nil && s.bus != nil {
		s.bus.Emit(eventbus.ProductLoaded, s.State())
	}
}

// LoadMore advances to the next page and appends it. It does nothing while
// a failed next page waits for Retry.
func (s *ProductList) LoadMore(ctx context.Context) {
	if s.AppendFailed() {
		return
	}
	s.state.Filters.Page++
	s.mirror()
	s.Fetch(ctx, true)
}

// Retry re-issues the fetch that failed. A failed next page is fetched again
// and appended, keeping the pages already loaded.
func (s *ProductList) Retry(ctx context.Context) {
	s.Fetch(ctx, s.AppendFailed())
}

// AppendFailed reports whether the current error came from loading a next
// page.
func (s *ProductList) AppendFailed() bool {
	return s.state.Error != nil && s.appendFailed
}

// UpdateFilters applies patch, restarts at page 1 and reloads.
func (s *ProductList) UpdateFilters(ctx context.Context, patch FilterPatch) {
	s.state.Filters = s.state.Filters.apply(patch)
	s.state.Filters.Page = 1
	s.mirror()
	s.Fetch(ctx, false)
	if s.bus != nil {
		s.bus.Emit(eventbus.ProductFilterChanged, s.state.Filters)
	}
}

// FetchCategories loads the category tree once.
func (s *ProductList) FetchCategories(ctx context.Context) {
	if s.state.Categories != nil || s.state.CategoriesLoading {
		return
	}
	s.state.CategoriesLoading = true
	s.render()

	api := s.api
	s.loop.Go(func() func() {
		cats, err := api.FetchCategories(ctx)
		return func() {
			s.state.CategoriesLoading = false
			if err != nil {
				s.log.Warn("fetch categories", zap.Error(err))
			} else {
				s.state.Categories = cats
			}
			s.render()
		}
	})
}

// Reset restores the initial state.
func (s *ProductList) Reset() {
	s.state = ProductListState{IsLoading: true, Filters: s.defaults}
	s.appendFailed = false
	s.replaceSeq = s.seq + 1
}

func (s *ProductList) mirror() {
	if s.query != nil {
		s.query.ReplaceQuery(s.state.Filters.Params())
	}
}
