package dom

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const shell = `<!DOCTYPE html><html><head></head><body><div id="root"></div></body></html>`

// Document is a parsed HTML page with a #root mount point.
type Document struct {
	root      *html.Node
	body      *html.Node
	mount     *html.Node
	selectors map[string]cascadia.Selector
	bindings  []*binding
	rev       uint64
	log       *zap.Logger
}

// New returns an empty page.
func New(logger *zap.Logger) *Document {
	if logger == nil {
		logger = zap.NewNop()
	}
	root, err := html.Parse(strings.NewReader(shell))
	if err != nil {
		panic(fmt.Sprintf("dom: parse shell: %v", err))
	}
	d := &Document{
		root:      root,
		selectors: make(map[string]cascadia.Selector),
		log:       logger,
	}
	d.body = cascadia.Query(root, cascadia.MustCompile("body"))
	d.mount = cascadia.Query(root, cascadia.MustCompile("#root"))
	return d
}

// Root returns the mount point.
func (d *Document) Root() Element { return d.wrap(d.mount) }

// Body returns the body element. Overlays such as the cart modal are
// appended here, next to the mount point.
func (d *Document) Body() Element { return d.wrap(d.body) }

// SetRootHTML replaces the mount point's content with markup.
func (d *Document) SetRootHTML(markup string) error {
	return d.Root().SetInnerHTML(markup)
}

// QuerySelector returns the first element in the page matching sel.
func (d *Document) QuerySelector(sel string) Element {
	return d.wrap(d.root).QuerySelector(sel)
}

// QuerySelectorAll returns every element in the page matching sel.
func (d *Document) QuerySelectorAll(sel string) []Element {
	return d.wrap(d.root).QuerySelectorAll(sel)
}

// Revision increases on every mutation. The host compares it to decide when
// to lay the page out again.
func (d *Document) Revision() uint64 { return d.rev }

// HTML renders the mount point's content. It is meant for tests and
// debugging.
func (d *Document) HTML() string {
	var b strings.Builder
	for c := d.mount.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// Wrap returns the element for a node of this document. The terminal host
// walks the node tree directly while laying out and wraps the nodes it
// needs to hand back as elements.
func (d *Document) Wrap(n *html.Node) Element {
	if n == nil || n.Type != html.ElementNode {
		return Element{}
	}
	return d.wrap(n)
}

func (d *Document) touch() { d.rev++ }

func (d *Document) wrap(n *html.Node) Element {
	if n == nil {
		return Element{}
	}
	return Element{doc: d, node: n}
}

// compile returns a cached matcher for sel.
func (d *Document) compile(sel string) (cascadia.Selector, error) {
	if m, ok := d.selectors[sel]; ok {
		return m, nil
	}
	m, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", sel, err)
	}
	d.selectors[sel] = m
	return m, nil
}
