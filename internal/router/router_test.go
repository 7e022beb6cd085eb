package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopfront/internal/basepath"
	"github.com/five82/shopfront/internal/dom"
	"github.com/five82/shopfront/internal/eventbus"
	"github.com/five82/shopfront/internal/history"
	"github.com/five82/shopfront/internal/routectx"
)

type fixture struct {
	doc     *dom.Document
	history *history.Memory
	router  *Router
	inits   []routectx.Context
}

func newFixture(t *testing.T, base, start string) *fixture {
	t.Helper()
	f := &fixture{doc: dom.New(nil), history: history.NewMemory(start)}
	f.router = New(Options{
		Document: f.doc,
		History:  f.history,
		Base:     basepath.New(base),
	})
	record := func(ctx routectx.Context) { f.inits = append(f.inits, ctx) }
	f.router.Register("/", func() string { return `<h1>home</h1><a href="/product/7" data-link><span>seven</span></a>` }, record)
	f.router.Register("/product/:productId", func() string { return `<h1>detail</h1>` }, record)
	f.router.SetNotFound(func() string { return `<h1>not found</h1>` })
	return f
}

func (f *fixture) heading() string {
	return f.doc.QuerySelector("h1").Text()
}

func TestStartResolvesInitialLocation(t *testing.T) {
	f := newFixture(t, "", "/?sort=name_asc")
	require.NoError(t, f.router.Start())

	assert.Equal(t, "home", f.heading())
	require.Len(t, f.inits, 1)
	assert.Equal(t, "name_asc", f.inits[0].Query.Get("sort"))
	assert.Equal(t, "/", f.router.Current().Pattern)
}

func TestParametricMatch(t *testing.T) {
	f := newFixture(t, "", "/")
	require.NoError(t, f.router.Start())

	f.router.Navigate("/product/85067212996?sort=price_desc")
	assert.Equal(t, "detail", f.heading())
	require.Len(t, f.inits, 2)
	ctx := f.inits[1]
	assert.Equal(t, "85067212996", ctx.Param("productId"))
	assert.Equal(t, "price_desc", ctx.Query.Get("sort"))
	assert.Equal(t, "/product/85067212996?sort=price_desc", f.history.Location().String())
	assert.Equal(t, "85067212996", f.router.Context().Param("productId"))
}

func TestNotFoundRunsNoInitializer(t *testing.T) {
	f := newFixture(t, "", "/nope")
	require.NoError(t, f.router.Start())
	assert.Equal(t, "not found", f.heading())
	assert.Empty(t, f.inits)

	f.router.Navigate("/product/1/extra")
	assert.Equal(t, "not found", f.heading())
}

func TestExactBeatsParametric(t *testing.T) {
	f := newFixture(t, "", "/")
	f.router.Register("/product/featured", func() string { return `<h1>featured</h1>` }, nil)
	require.NoError(t, f.router.Start())

	f.router.Navigate("/product/featured")
	assert.Equal(t, "featured", f.heading())

	rt, params, ok := f.router.match("/product/3")
	require.True(t, ok)
	assert.Equal(t, "/product/:productId", rt.pattern)
	assert.Equal(t, map[string]string{"productId": "3"}, params)
}

func TestReRegisterReplacesPage(t *testing.T) {
	f := newFixture(t, "", "/")
	f.router.Register("/", func() string { return `<h1>new home</h1>` }, nil)
	require.NoError(t, f.router.Start())
	assert.Equal(t, "new home", f.heading())
	assert.Empty(t, f.inits)
}

func TestLinkClickNavigates(t *testing.T) {
	f := newFixture(t, "/shop", "/shop/")
	require.NoError(t, f.router.Start())

	ok := f.doc.Dispatch(&dom.Event{Type: "click", Target: f.doc.QuerySelector("span")})
	assert.False(t, ok, "link default is prevented")
	assert.Equal(t, "detail", f.heading())
	assert.Equal(t, "/shop/product/7", f.history.Location().Path)
}

func TestBackForwardResolve(t *testing.T) {
	f := newFixture(t, "", "/")
	require.NoError(t, f.router.Start())
	f.router.Navigate("/product/1")

	f.history.Back()
	assert.Equal(t, "home", f.heading())
	f.history.Forward()
	assert.Equal(t, "detail", f.heading())
	assert.Len(t, f.inits, 4)

	f.router.Stop()
	f.history.Back()
	assert.Equal(t, "detail", f.heading(), "stopped router ignores pops")
}

func TestRouteChangedEvent(t *testing.T) {
	bus := eventbus.New(nil)
	var paths []string
	bus.On(eventbus.RouteChanged, func(p any) { paths = append(paths, p.(routectx.Context).Path) })

	doc := dom.New(nil)
	r := New(Options{Document: doc, History: history.NewMemory("/x"), Bus: bus})
	r.Register("/x", func() string { return "" }, nil)
	require.NoError(t, r.Start())
	r.Navigate("/y")
	assert.Equal(t, []string{"/x", "/y"}, paths)
}

func TestRegexMetaInPatternIsLiteral(t *testing.T) {
	f := newFixture(t, "", "/")
	f.router.Register("/a.b", func() string { return `<h1>dot</h1>` }, nil)
	_, _, ok := f.router.match("/axb")
	assert.False(t, ok)
	_, _, ok = f.router.match("/a.b")
	assert.True(t, ok)
}
