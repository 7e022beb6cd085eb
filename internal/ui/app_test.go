package ui

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopfront/internal/basepath"
	"github.com/five82/shopfront/internal/dom"
	"github.com/five82/shopfront/internal/history"
	"github.com/five82/shopfront/internal/loop"
	"github.com/five82/shopfront/internal/storage"
	"github.com/five82/shopfront/internal/toast"
	"github.com/five82/shopfront/internal/viewport"
)

type fakeNavigator struct {
	paths []string
}

func (n *fakeNavigator) Navigate(path string) { n.paths = append(n.paths, path) }

type harness struct {
	m       *Model
	doc     *dom.Document
	hist    *history.Memory
	nav     *fakeNavigator
	kv      *storage.Memory
	tracker *viewport.Tracker
	toasts  *toast.Center
}

func newHarness(t *testing.T, markup string, mutate ...func(*Options)) *harness {
	t.Helper()
	doc := dom.New(nil)
	if err := doc.SetRootHTML(markup); err != nil {
		t.Fatalf("SetRootHTML: %v", err)
	}
	h := &harness{
		doc:     doc,
		hist:    history.NewMemory("/"),
		nav:     &fakeNavigator{},
		kv:      storage.NewMemory(),
		tracker: &viewport.Tracker{},
		toasts:  toast.NewCenter(nil),
	}
	opts := Options{
		Document:  doc,
		History:   h.hist,
		Navigator: h.nav,
		Storage:   h.kv,
		Tracker:   h.tracker,
		Toasts:    h.toasts,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	h.m = New(opts)
	h.m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return h
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.m.Update(keyMsg(k))
	}
	return cmd
}

func (h *harness) record(t *testing.T, eventType, selector string, got *[]string) {
	t.Helper()
	err := h.doc.On(eventType, selector, func(ev *dom.Event) {
		entry := eventType + ":" + ev.CurrentTarget.ID()
		if ev.Key != "" {
			entry += ":" + ev.Key
		}
		if ev.Value != "" {
			entry += "=" + ev.Value
		}
		*got = append(*got, entry)
	})
	if err != nil {
		t.Fatalf("On: %v", err)
	}
}

func assertEvents(t *testing.T, got []string, want ...string) {
	t.Helper()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestTabMovesFocusAndEnterClicks(t *testing.T) {
	h := newHarness(t, `<button id="one">One</button><button id="two">Two</button>`)
	var got []string
	h.record(t, "click", "button", &got)

	h.press("tab", "enter", "tab", "enter", "shift+tab", "enter", "tab", "tab", "enter")

	assertEvents(t, got, "click:one", "click:two", "click:one", "click:one")
}

func TestCheckboxToggleAndSelectCycleFireChange(t *testing.T) {
	h := newHarness(t, `<input type="checkbox" id="c"><select id="s"><option value="a">A</option><option value="b">B</option></select>`)
	var got []string
	h.record(t, "change", "input, select", &got)

	h.press("tab", "enter")
	if !h.doc.QuerySelector("#c").Checked() {
		t.Fatalf("checkbox should be checked after enter")
	}
	h.press("tab", "enter", "enter")

	assertEvents(t, got, "change:c", "change:s=b", "change:s=a")
	if v := h.doc.QuerySelector("#s").Value(); v != "a" {
		t.Fatalf("select value = %q, want a", v)
	}
}

func TestEditingInputFiresInputKeydownChangeAndBlur(t *testing.T) {
	h := newHarness(t, `<input id="q" type="text" value="ab">`)
	var got []string
	for _, ev := range []string{"input", "keydown", "change", "blur"} {
		h.record(t, ev, "#q", &got)
	}

	h.press("tab", "i", "c")
	if !h.m.editing {
		t.Fatalf("expected edit mode")
	}
	h.press("enter")
	if h.m.editing {
		t.Fatalf("enter should leave edit mode")
	}
	assertEvents(t, got, "input:q=abc", "keydown:q:Enter=abc", "change:q=abc")

	got = nil
	h.press("enter", "x", "esc")
	assertEvents(t, got, "input:q=abcx", "blur:q=abcx", "change:q=abcx")
	if v := h.doc.QuerySelector("#q").Value(); v != "abcx" {
		t.Fatalf("input value = %q", v)
	}
}

func TestEscapeDispatchesKeydownOnBody(t *testing.T) {
	h := newHarness(t, `<p>page</p>`)
	var keys []string
	if err := h.doc.On("keydown", "body", func(ev *dom.Event) { keys = append(keys, ev.Key) }); err != nil {
		t.Fatal(err)
	}
	h.press("esc")
	assertEvents(t, keys, "Escape")
}

func TestFocusSurvivesRerender(t *testing.T) {
	markup := `<button id="one">One</button><button class="again">Again</button>`
	h := newHarness(t, markup)
	clicks := 0
	if err := h.doc.On("click", ".again", func(*dom.Event) {
		clicks++
		_ = h.doc.SetRootHTML(markup)
	}); err != nil {
		t.Fatal(err)
	}

	h.press("tab", "tab")
	before := h.m.focused
	h.press("enter", "enter")

	if clicks != 2 {
		t.Fatalf("clicks = %d, want 2", clicks)
	}
	if h.m.focused == before || !h.m.focused.HasClass("again") {
		t.Fatalf("focus should move to the re-rendered button, got %v", h.m.focused)
	}
	if h.m.pg.indexOf(h.m.focused) != 1 {
		t.Fatalf("focused element not in the current layout")
	}
}

func TestLinkDefaultActionNavigates(t *testing.T) {
	h := newHarness(t, `<a href="/shop/product/7">Seven</a><a href="/elsewhere" class="spa">Spa</a>`,
		func(o *Options) { o.Base = basepath.New("/shop") })
	if err := h.doc.On("click", ".spa", func(ev *dom.Event) { ev.PreventDefault() }); err != nil {
		t.Fatal(err)
	}

	h.press("tab", "enter", "tab", "enter")

	assertEvents(t, h.nav.paths, "/product/7")
}

func TestScrollingRevealsObservedElement(t *testing.T) {
	var b strings.Builder
	for i := range 60 {
		b.WriteString("<p>line " + strconv.Itoa(i) + "</p>")
	}
	b.WriteString(`<div class="trigger"></div>`)
	h := newHarness(t, b.String())

	fired := 0
	obs := viewport.NewObserver(h.tracker, func() { fired++ }, viewport.Options{}, nil)
	obs.Observe(h.doc.QuerySelector(".trigger"))

	h.press("j")
	if fired != 0 {
		t.Fatalf("trigger fired while off screen")
	}
	h.press("G")
	if fired != 1 {
		t.Fatalf("fired = %d after scrolling to the bottom, want 1", fired)
	}
	h.press("k")
	if fired != 1 {
		t.Fatalf("trigger still in the margin should not fire again, fired = %d", fired)
	}
	h.press("home", "G")
	if fired != 2 {
		t.Fatalf("fired = %d after leaving and returning, want 2", fired)
	}
}

func TestThemeCyclePersists(t *testing.T) {
	h := newHarness(t, `<p>page</p>`)
	h.press("T")

	if got, _ := h.kv.Get(ThemeStorageKey); got != "Kanagawa" {
		t.Fatalf("stored theme = %q, want Kanagawa", got)
	}
	again := New(Options{Document: h.doc, Storage: h.kv})
	if again.theme.Name != "Kanagawa" {
		t.Fatalf("new model theme = %q, want the stored Kanagawa", again.theme.Name)
	}
	forced := New(Options{Document: h.doc, Storage: h.kv, ThemeName: "Slate"})
	if forced.theme.Name != "Slate" {
		t.Fatalf("ThemeName should override storage, got %q", forced.theme.Name)
	}
}

func TestHistoryKeysResetFocusOnPathChange(t *testing.T) {
	h := newHarness(t, `<button id="one">One</button>`)
	h.hist.Push("/product/1")
	h.m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	h.press("tab")
	if h.m.focused.IsZero() {
		t.Fatalf("expected focus")
	}

	h.press("b")
	if got := h.hist.Location().Path; got != "/" {
		t.Fatalf("path after back = %q", got)
	}
	if !h.m.focused.IsZero() {
		t.Fatalf("focus should reset when the path changes")
	}
	h.press("f")
	if got := h.hist.Location().Path; got != "/product/1" {
		t.Fatalf("path after forward = %q", got)
	}
}

func TestAddressBarNavigates(t *testing.T) {
	h := newHarness(t, `<p>page</p>`)
	h.press("g")
	if !h.m.addressing {
		t.Fatalf("g should open the address bar")
	}
	h.m.address.SetValue("/product/9")
	h.press("enter")

	assertEvents(t, h.nav.paths, "/product/9")
	if h.m.addressing {
		t.Fatalf("enter should close the address bar")
	}
}

func TestStatusLineShowsToast(t *testing.T) {
	h := newHarness(t, `<p>page</p>`)
	h.toasts.Show("Added to cart", toast.Success)

	view := h.m.View()
	if !strings.Contains(view, "Added to cart") || !strings.Contains(view, "success") {
		t.Fatalf("view missing toast:\n%s", view)
	}
}

func TestLoopTasksDrainOnReady(t *testing.T) {
	l := loop.NewChan()
	h := newHarness(t, `<p>before</p>`, func(o *Options) { o.Loop = l })

	l.Post(func() { _ = h.doc.SetRootHTML(`<p>after</p>`) })
	_, cmd := h.m.Update(loopReadyMsg{})

	if cmd == nil {
		t.Fatalf("expected the next loop wait to be scheduled")
	}
	if got := strings.Join(h.m.pg.lines, "\n"); got != "after" {
		t.Fatalf("layout = %q, want the posted render", got)
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	h := newHarness(t, `<p>page</p>`)
	h.press("?")
	if !strings.Contains(h.m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	h.press("x")
	if h.m.showHelp {
		t.Fatalf("any key should close help")
	}
}

func TestLogOverlayShowsTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopfront.log")
	line := `{"severity":"WARN","timestamp":"2026-10-14T09:30:00Z","message":"catalog slow","ms":1200}`
	if err := os.WriteFile(path, []byte(line+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newHarness(t, `<p>page</p>`, func(o *Options) { o.LogPath = path })

	cmd := h.press("L")
	if cmd == nil || !h.m.logs.open {
		t.Fatalf("L should open the log overlay and read the file")
	}
	h.m.Update(cmd())

	view := h.m.View()
	if !strings.Contains(view, "catalog slow") || !strings.Contains(view, "ms=1200") {
		t.Fatalf("log overlay missing entry:\n%s", view)
	}
	h.press("esc")
	if h.m.logs.open {
		t.Fatalf("esc should close the log overlay")
	}
}
