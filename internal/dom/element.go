package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Element is a handle to one element node. Handles to the same node compare
// equal; the zero value stands for "no element".
type Element struct {
	doc  *Document
	node *html.Node
}

// IsZero reports whether e refers to no element.
func (e Element) IsZero() bool { return e.node == nil }

// Node exposes the underlying node.
func (e Element) Node() *html.Node { return e.node }

// Tag returns the lower-case tag name.
func (e Element) Tag() string {
	if e.node == nil || e.node.Type != html.ElementNode {
		return ""
	}
	return e.node.Data
}

// ID returns the id attribute.
func (e Element) ID() string { return e.Attr("id") }

// Attr returns the named attribute, or "".
func (e Element) Attr(name string) string {
	v, _ := e.lookup(name)
	return v
}

// HasAttr reports whether the named attribute is present.
func (e Element) HasAttr(name string) bool {
	_, ok := e.lookup(name)
	return ok
}

func (e Element) lookup(name string) (string, bool) {
	if e.node == nil {
		return "", false
	}
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets (or adds) the named attribute.
func (e Element) SetAttr(name, value string) {
	if e.node == nil {
		return
	}
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			if a.Val != value {
				e.node.Attr[i].Val = value
				e.doc.touch()
			}
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	e.doc.touch()
}

// RemoveAttr deletes the named attribute.
func (e Element) RemoveAttr(name string) {
	if e.node == nil {
		return
	}
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			e.doc.touch()
			return
		}
	}
}

// Data returns the data-<name> attribute; name is given in kebab case
// ("product-id").
func (e Element) Data(name string) string { return e.Attr("data-" + name) }

// HasClass reports whether class is in the class list.
func (e Element) HasClass(class string) bool {
	for _, c := range strings.Fields(e.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Text returns the trimmed text content.
func (e Element) Text() string {
	if e.node == nil {
		return ""
	}
	return strings.TrimSpace(e.selection().Text())
}

// SetText replaces the children with a single text node.
func (e Element) SetText(text string) {
	if e.node == nil {
		return
	}
	removeChildren(e.node)
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	e.doc.touch()
}

// Value returns the form value: the value attribute for inputs and the
// selected option's value for selects.
func (e Element) Value() string {
	if e.Tag() != "select" {
		return e.Attr("value")
	}
	options := e.QuerySelectorAll("option")
	for _, opt := range options {
		if opt.HasAttr("selected") {
			return opt.optionValue()
		}
	}
	if len(options) > 0 {
		return options[0].optionValue()
	}
	return ""
}

// SetValue writes the form value. For a select, the option with that value
// becomes the selected one.
func (e Element) SetValue(value string) {
	if e.Tag() != "select" {
		e.SetAttr("value", value)
		return
	}
	for _, opt := range e.QuerySelectorAll("option") {
		if opt.optionValue() == value {
			opt.SetAttr("selected", "")
		} else {
			opt.RemoveAttr("selected")
		}
	}
}

func (e Element) optionValue() string {
	if v, ok := e.lookup("value"); ok {
		return v
	}
	return e.Text()
}

// Checked reports the checked state of a checkbox.
func (e Element) Checked() bool { return e.HasAttr("checked") }

// SetChecked sets the checked state of a checkbox.
func (e Element) SetChecked(checked bool) {
	if checked {
		e.SetAttr("checked", "")
	} else {
		e.RemoveAttr("checked")
	}
}

// Parent returns the parent element, or the zero Element at the top.
func (e Element) Parent() Element {
	if e.node == nil || e.node.Parent == nil || e.node.Parent.Type != html.ElementNode {
		return Element{}
	}
	return e.doc.wrap(e.node.Parent)
}

// Children returns the element children in document order.
func (e Element) Children() []Element {
	if e.node == nil {
		return nil
	}
	var out []Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// Contains reports whether other is e or one of its descendants.
func (e Element) Contains(other Element) bool {
	if e.node == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Matches reports whether e matches sel. An invalid selector matches nothing.
func (e Element) Matches(sel string) bool {
	if e.node == nil || e.node.Type != html.ElementNode {
		return false
	}
	m, err := e.doc.compile(sel)
	if err != nil {
		e.doc.log.Debug("invalid selector", zap.Error(err))
		return false
	}
	return m.Match(e.node)
}

// Closest returns e or its nearest ancestor matching sel.
func (e Element) Closest(sel string) Element {
	for cur := e; !cur.IsZero(); cur = cur.Parent() {
		if cur.Matches(sel) {
			return cur
		}
	}
	return Element{}
}

// QuerySelector returns the first descendant matching sel.
func (e Element) QuerySelector(sel string) Element {
	if e.node == nil {
		return Element{}
	}
	found := e.selection().Find(sel)
	if found.Length() == 0 {
		return Element{}
	}
	return e.doc.wrap(found.Get(0))
}

// QuerySelectorAll returns every descendant matching sel in document order.
func (e Element) QuerySelectorAll(sel string) []Element {
	if e.node == nil {
		return nil
	}
	found := e.selection().Find(sel)
	out := make([]Element, 0, found.Length())
	for _, n := range found.Nodes {
		out = append(out, e.doc.wrap(n))
	}
	return out
}

// SetInnerHTML replaces the children with the parsed markup.
func (e Element) SetInnerHTML(markup string) error {
	if e.node == nil {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return err
	}
	removeChildren(e.node)
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	e.doc.touch()
	return nil
}

// AppendHTML parses markup and appends it. It returns the first element
// appended, if any.
func (e Element) AppendHTML(markup string) (Element, error) {
	if e.node == nil {
		return Element{}, nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return Element{}, err
	}
	var first Element
	for _, n := range nodes {
		e.node.AppendChild(n)
		if first.IsZero() && n.Type == html.ElementNode {
			first = e.doc.wrap(n)
		}
	}
	e.doc.touch()
	return first, nil
}

// Remove detaches e from its parent.
func (e Element) Remove() {
	if e.node == nil || e.node.Parent == nil {
		return
	}
	e.node.Parent.RemoveChild(e.node)
	e.doc.touch()
}

func (e Element) selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}
