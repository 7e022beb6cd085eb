package state

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/catalog/catalogtest"
	"github.com/five82/shopfront/internal/eventbus"
	"github.com/five82/shopfront/internal/loop"
	"github.com/five82/shopfront/internal/querystring"
)

type queryRecorder struct {
	writes []string
}

func (q *queryRecorder) ReplaceQuery(p querystring.Params) {
	q.writes = append(q.writes, querystring.Encode(p))
}

func manyProducts(n int) []catalog.Product {
	out := make([]catalog.Product, n)
	for i := range out {
		cat2 := "kitchen"
		if i%2 == 1 {
			cat2 = "bath"
		}
		out[i] = catalog.Product{
			ProductID: fmt.Sprintf("%03d", i),
			Title:     fmt.Sprintf("Item %03d", i),
			LPrice:    catalog.Price(100 + i),
			Category1: "home",
			Category2: cat2,
		}
	}
	return out
}

type listFixture struct {
	api     *catalogtest.Fake
	loop    *loop.Manual
	query   *queryRecorder
	store   *ProductList
	renders int
}

func newListFixture(t *testing.T, products []catalog.Product) *listFixture {
	t.Helper()
	f := &listFixture{api: catalogtest.New(products...), loop: &loop.Manual{}, query: &queryRecorder{}}
	f.store = NewProductList(ProductListOptions{API: f.api, Loop: f.loop, Query: f.query})
	f.store.SetRender(func() { f.renders++ })
	return f
}

func TestProductListInitialState(t *testing.T) {
	f := newListFixture(t, nil)
	st := f.store.State()
	assert.True(t, st.IsLoading)
	assert.Equal(t, DefaultFilters(), st.Filters)
	assert.Equal(t, Filters{Page: 1, Limit: 20, Sort: "price_asc"}, st.Filters)
}

func TestProductListFetchReplaceThenAppend(t *testing.T) {
	f := newListFixture(t, manyProducts(45))
	ctx := context.Background()

	f.store.Fetch(ctx, false)
	assert.True(t, f.store.IsLoading())
	assert.Equal(t, 1, f.renders, "fetch renders the loading state first")
	f.loop.Flush()

	st := f.store.State()
	assert.False(t, st.IsLoading)
	assert.Len(t, st.Products, 20)
	assert.Equal(t, 45, st.TotalCount)
	assert.True(t, f.store.HasMore())

	f.store.LoadMore(ctx)
	f.loop.Flush()
	f.store.LoadMore(ctx)
	f.loop.Flush()

	st = f.store.State()
	assert.Len(t, st.Products, 45)
	assert.False(t, f.store.HasMore())
	assert.Equal(t, 3, st.Filters.Page)
	assert.Equal(t, 3, f.api.LastList().Page)
	assert.Equal(t, "limit=20&page=3&sort=price_asc", f.query.writes[len(f.query.writes)-1])
}

func TestProductListFetchError(t *testing.T) {
	f := newListFixture(t, manyProducts(5))
	f.api.ListErr = errors.New("boom")

	f.store.Fetch(context.Background(), false)
	f.loop.Flush()

	st := f.store.State()
	assert.False(t, st.IsLoading)
	assert.EqualError(t, st.Error, "boom")

	f.api.ListErr = nil
	f.store.Fetch(context.Background(), false)
	assert.NoError(t, f.store.State().Error, "a new fetch clears the error")
	f.loop.Flush()
	assert.Len(t, f.store.State().Products, 5)
}

func TestProductListUpdateFilters(t *testing.T) {
	bus := eventbus.New(nil)
	var changed []Filters
	bus.On(eventbus.ProductFilterChanged, func(p any) { changed = append(changed, p.(Filters)) })

	f := newListFixture(t, manyProducts(30))
	f.store = NewProductList(ProductListOptions{API: f.api, Loop: f.loop, Query: f.query, Bus: bus})
	ctx := context.Background()

	f.store.Fetch(ctx, false)
	f.loop.Flush()
	f.store.LoadMore(ctx)
	f.loop.Flush()
	require.Equal(t, 2, f.store.Filters().Page)

	f.store.UpdateFilters(ctx, FilterPatch{KeyCategory2: "bath", KeyLimit: "500", KeySort: "bogus"})
	f.loop.Flush()

	fl := f.store.Filters()
	assert.Equal(t, 1, fl.Page, "filter changes restart at page 1")
	assert.Equal(t, MaxLimit, fl.Limit)
	assert.Equal(t, "price_asc", fl.Sort)
	assert.Equal(t, "bath", fl.Category2)
	assert.Len(t, f.store.State().Products, 15)
	require.Len(t, changed, 1)
	assert.Equal(t, "bath", changed[0].Category2)
	assert.Equal(t, "category2=bath&limit=100&page=1&sort=price_asc", f.query.writes[len(f.query.writes)-1])

	f.store.UpdateFilters(ctx, FilterPatch{KeyCategory2: ""})
	assert.Empty(t, f.store.Filters().Category2, "an empty value clears the filter")
	assert.Equal(t, MaxLimit, f.store.Filters().Limit, "absent keys are untouched")
}

func TestProductListStaleAppendIsDiscarded(t *testing.T) {
	f := newListFixture(t, manyProducts(45))
	ctx := context.Background()
	f.store.Fetch(ctx, false)
	f.loop.Flush()

	// Page 2 is in flight when the user switches category.
	f.store.LoadMore(ctx)
	f.store.UpdateFilters(ctx, FilterPatch{KeyCategory2: "kitchen"})
	require.Equal(t, 2, f.loop.Pending())

	// The filtered response arrives first, the stale page 2 afterwards.
	f.loop.RunAt(1)
	f.loop.RunAt(0)

	st := f.store.State()
	assert.False(t, st.IsLoading)
	assert.Len(t, st.Products, 20)
	for _, p := range st.Products {
		assert.Equal(t, "kitchen", p.Category2)
	}
	assert.Equal(t, 23, st.TotalCount)
}

func TestProductListLoadingStaysUntilNewestCompletes(t *testing.T) {
	f := newListFixture(t, manyProducts(45))
	ctx := context.Background()
	f.store.Fetch(ctx, false)
	f.store.UpdateFilters(ctx, FilterPatch{KeySearch: "Item 00"})
	require.Equal(t, 2, f.loop.Pending())

	f.loop.RunAt(0)
	assert.True(t, f.store.IsLoading(), "the superseded fetch must not end loading")
	f.loop.Flush()
	assert.False(t, f.store.IsLoading())
	assert.Len(t, f.store.State().Products, 10)
}

func TestProductListInitializeFromURL(t *testing.T) {
	f := newListFixture(t, nil)
	f.store.InitializeFromURL(querystring.Params{
		"page": "4", "limit": "50", "search": " shoe ", "category1": "home", "sort": "name_desc", "unknown": "x",
	})
	assert.Equal(t, Filters{Page: 1, Limit: 50, Search: "shoe", Category1: "home", Sort: "name_desc"}, f.store.Filters())

	f.store.InitializeFromURL(querystring.Params{"limit": "abc"})
	assert.Equal(t, DefaultFilters(), f.store.Filters(), "invalid limit falls back and filters reset to defaults")
}

func TestProductListConfiguredLimit(t *testing.T) {
	api := catalogtest.New(manyProducts(3)...)
	store := NewProductList(ProductListOptions{API: api, Loop: &loop.Manual{}, Limit: 40})
	assert.Equal(t, 40, store.Filters().Limit)

	store.InitializeFromURL(querystring.Params{"search": "mug"})
	assert.Equal(t, 40, store.Filters().Limit, "an absent limit keeps the configured page size")
	store.InitializeFromURL(querystring.Params{"limit": "10"})
	assert.Equal(t, 10, store.Filters().Limit)

	store.Reset()
	assert.Equal(t, 40, store.Filters().Limit)

	capped := NewProductList(ProductListOptions{API: api, Loop: &loop.Manual{}, Limit: 500})
	assert.Equal(t, MaxLimit, capped.Filters().Limit)
}

func TestProductListRetryAppendsFailedPage(t *testing.T) {
	f := newListFixture(t, manyProducts(30))
	ctx := context.Background()
	f.store.Fetch(ctx, false)
	f.loop.Flush()
	require.Len(t, f.store.State().Products, 20)

	f.api.ListErr = errors.New("down")
	f.store.LoadMore(ctx)
	f.loop.Flush()
	assert.True(t, f.store.AppendFailed())
	assert.Len(t, f.store.State().Products, 20, "a failed next page keeps the loaded ones")

	calls := len(f.api.Lists)
	f.store.LoadMore(ctx)
	assert.Equal(t, calls, len(f.api.Lists), "load more waits for retry")
	assert.Equal(t, 2, f.store.Filters().Page)

	f.api.ListErr = nil
	f.store.Retry(ctx)
	assert.Equal(t, 2, f.api.LastList().Page)
	f.loop.Flush()

	st := f.store.State()
	require.Len(t, st.Products, 30)
	assert.Equal(t, "000", st.Products[0].ProductID)
	assert.Equal(t, "020", st.Products[20].ProductID)
	assert.NoError(t, st.Error)
	assert.False(t, f.store.AppendFailed())
}

func TestProductListRetryReplacesAfterFailedFirstPage(t *testing.T) {
	f := newListFixture(t, manyProducts(3))
	f.api.ListErr = errors.New("down")
	f.store.Fetch(context.Background(), false)
	f.loop.Flush()
	assert.False(t, f.store.AppendFailed())

	f.api.ListErr = nil
	f.store.Retry(context.Background())
	f.loop.Flush()
	assert.Len(t, f.store.State().Products, 3)
}

func TestProductListFindAndCategories(t *testing.T) {
	f := newListFixture(t, manyProducts(3))
	ctx := context.Background()
	f.store.Fetch(ctx, false)
	f.store.FetchCategories(ctx)
	f.store.FetchCategories(ctx)
	f.loop.Flush()

	p, ok := f.store.Find("001")
	require.True(t, ok)
	assert.Equal(t, "Item 001", p.Title)
	_, ok = f.store.Find("zzz")
	assert.False(t, ok)

	assert.Equal(t, 1, f.api.Categories, "categories load once")
	assert.Equal(t, []string{"bath", "kitchen"}, f.store.State().Categories["home"])

	f.store.FetchCategories(ctx)
	assert.Equal(t, 1, f.api.Categories)
}

func TestProductListCategoriesRetryAfterError(t *testing.T) {
	f := newListFixture(t, manyProducts(3))
	f.api.CategoriesErr = errors.New("down")
	f.store.FetchCategories(context.Background())
	f.loop.Flush()
	assert.Nil(t, f.store.State().Categories)
	assert.False(t, f.store.State().CategoriesLoading)

	f.api.CategoriesErr = nil
	f.store.FetchCategories(context.Background())
	f.loop.Flush()
	assert.NotNil(t, f.store.State().Categories)
}

func TestProductListResetDropsInFlight(t *testing.T) {
	f := newListFixture(t, manyProducts(3))
	f.store.Fetch(context.Background(), false)
	f.store.Reset()
	f.loop.Flush()
	assert.Empty(t, f.store.State().Products)
	assert.True(t, f.store.IsLoading())
}
