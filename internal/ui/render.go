package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/five82/shopfront/internal/dom"
)

// span is the inclusive range of lines an element occupies. An element that
// draws nothing gets the line it would have started on.
type span struct {
	top, bottom int
}

// page is a laid out document.
type page struct {
	lines      []string
	spans      map[*html.Node]span
	focusables []dom.Element
}

func (p *page) spanOf(el dom.Element) (span, bool) {
	if p == nil || el.IsZero() {
		return span{}, false
	}
	s, ok := p.spans[el.Node()]
	return s, ok
}

func (p *page) indexOf(el dom.Element) int {
	for i, f := range p.focusables {
		if f == el {
			return i
		}
	}
	return -1
}

var blockTags = map[string]bool{
	"div": true, "p": true, "header": true, "main": true, "footer": true,
	"section": true, "nav": true, "article": true, "aside": true, "form": true,
	"ul": true, "ol": true, "li": true, "table": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// blank line after these
var gapTags = map[string]bool{
	"header": true, "section": true, "footer": true, "h1": true, "h2": true,
}

var skipTags = map[string]bool{
	"head": true, "script": true, "style": true, "template": true,
	"img": true, "option": true,
}

// classStyles is the host's stylesheet, checked in order.
var classStyles = []struct {
	class string
	pick  func(Styles) lipgloss.Style
}{
	{"product-skeleton", func(s Styles) lipgloss.Style { return s.FaintText }},
	{"error-message", func(s Styles) lipgloss.Style { return s.DangerText }},
	{"product-price", func(s Styles) lipgloss.Style { return s.AccentText.Bold(true) }},
	{"related-price", func(s Styles) lipgloss.Style { return s.AccentText }},
	{"cart-item-subtotal", func(s Styles) lipgloss.Style { return s.AccentText }},
	{"cart-total-amount", func(s Styles) lipgloss.Style { return s.AccentText.Bold(true) }},
	{"cart-badge", func(s Styles) lipgloss.Style { return s.WarningText.Bold(true) }},
	{"rating-stars", func(s Styles) lipgloss.Style { return s.WarningText }},
	{"selected", func(s Styles) lipgloss.Style { return s.SuccessText }},
	{"product-brand", func(s Styles) lipgloss.Style { return s.MutedText }},
	{"product-count", func(s Styles) lipgloss.Style { return s.MutedText }},
	{"loading-indicator", func(s Styles) lipgloss.Style { return s.MutedText }},
	{"loading-more", func(s Styles) lipgloss.Style { return s.MutedText }},
	{"list-end", func(s Styles) lipgloss.Style { return s.FaintText }},
	{"page-footer", func(s Styles) lipgloss.Style { return s.FaintText }},
}

type layoutOptions struct {
	width   int
	styles  Styles
	focused dom.Element
	// field is drawn in place of the focused input while it is edited.
	field string
}

type layouter struct {
	doc     *dom.Document
	opts    layoutOptions
	p       page
	segs    []string
	w       int
	emitted int
	// highlight is non-zero inside the focused clickable element.
	highlight int
}

// layoutDocument lays the document out as terminal lines. While an overlay
// is appended to the body only the topmost overlay is laid out, so focus
// cannot leave it.
func layoutDocument(doc *dom.Document, opts layoutOptions) page {
	if opts.width <= 0 {
		opts.width = 80
	}
	l := &layouter{
		doc:  doc,
		opts: opts,
		p:    page{spans: make(map[*html.Node]span)},
	}
	l.walk(topLayer(doc).Node(), opts.styles.Text)
	l.flush()
	return l.p
}

// topLayer returns the last body child other than the mount point, or the
// mount point when nothing is layered over it.
func topLayer(doc *dom.Document) dom.Element {
	root := doc.Root()
	children := doc.Body().Children()
	for i := len(children) - 1; i >= 0; i-- {
		if children[i] != root {
			return children[i]
		}
	}
	return root
}

func (l *layouter) walk(n *html.Node, st lipgloss.Style) {
	switch n.Type {
	case html.TextNode:
		for _, word := range strings.Fields(n.Data) {
			l.put(st.Render(word), lipgloss.Width(word))
		}
		return
	case html.ElementNode:
	default:
		return
	}
	tag := n.Data
	el := l.doc.Wrap(n)
	if skipTags[tag] || el.HasAttr("hidden") {
		return
	}
	block := blockTags[tag]
	if block {
		l.flush()
	}
	top := len(l.p.lines)

	switch {
	case tag == "br":
		l.flush()
	case tag == "button":
		st := l.opts.styles.Control
		if el.HasClass("selected") {
			st = l.opts.styles.SuccessText
		}
		l.control(el, "["+label(el)+"]", st)
	case tag == "a" && el.HasAttr("href"):
		l.control(el, label(el), l.opts.styles.Link)
	case tag == "input":
		l.input(el)
	case tag == "select":
		l.control(el, "‹ "+selectedLabel(el)+" ›", l.opts.styles.Field)
	case l.doc.Listens("click", el):
		l.clickable(n, el, st)
	default:
		l.children(n, l.styleFor(el, st))
	}

	if block {
		l.flush()
	}
	bottom := len(l.p.lines)
	if len(l.segs) == 0 && bottom > top {
		bottom--
	}
	l.p.spans[n] = span{top: top, bottom: bottom}
	if block && gapTags[tag] {
		l.gap()
	}
}

func (l *layouter) children(n *html.Node, st lipgloss.Style) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		l.walk(c, st)
	}
}

// clickable lays out a non-control element with a click handler, such as a
// product card. It is focusable only if it draws something.
func (l *layouter) clickable(n *html.Node, el dom.Element, st lipgloss.Style) {
	idx := len(l.p.focusables)
	l.p.focusables = append(l.p.focusables, el)
	before := l.emitted
	if el == l.opts.focused {
		l.highlight++
		defer func() { l.highlight-- }()
	}
	l.children(n, l.styleFor(el, st))
	if l.emitted == before {
		l.p.focusables = append(l.p.focusables[:idx], l.p.focusables[idx+1:]...)
	}
}

func (l *layouter) control(el dom.Element, text string, st lipgloss.Style) {
	l.p.focusables = append(l.p.focusables, el)
	if el == l.opts.focused {
		st = l.opts.styles.Selected
	}
	l.put(st.Render(text), lipgloss.Width(text))
}

func (l *layouter) input(el dom.Element) {
	switch strings.ToLower(el.Attr("type")) {
	case "hidden":
		return
	case "checkbox":
		box := "[ ]"
		if el.Checked() {
			box = "[x]"
		}
		l.control(el, box, l.opts.styles.Control)
		return
	}
	if el == l.opts.focused && l.opts.field != "" {
		l.p.focusables = append(l.p.focusables, el)
		l.put(l.opts.field, lipgloss.Width(l.opts.field))
		return
	}
	l.control(el, fieldText(el), l.opts.styles.Field)
}

// styleFor returns the style el's text is drawn in, inheriting st.
func (l *layouter) styleFor(el dom.Element, st lipgloss.Style) lipgloss.Style {
	if l.highlight > 0 {
		return l.opts.styles.Selected
	}
	for _, cs := range classStyles {
		if el.HasClass(cs.class) {
			return cs.pick(l.opts.styles)
		}
	}
	switch el.Tag() {
	case "h1", "h2", "h3":
		return l.opts.styles.Heading
	}
	return st
}

// put appends one rendered word of the given display width, wrapping first
// when it would overflow.
func (l *layouter) put(rendered string, width int) {
	if l.w > 0 && l.w+1+width > l.opts.width {
		l.flush()
	}
	if l.w > 0 {
		l.segs = append(l.segs, " ")
		l.w++
	}
	l.segs = append(l.segs, rendered)
	l.w += width
	l.emitted++
}

func (l *layouter) flush() {
	if len(l.segs) == 0 {
		return
	}
	line := strings.Join(l.segs, "")
	if l.w > l.opts.width {
		line = lipgloss.NewStyle().MaxWidth(l.opts.width).Render(line)
	}
	l.p.lines = append(l.p.lines, line)
	l.segs = l.segs[:0]
	l.w = 0
}

func (l *layouter) gap() {
	if n := len(l.p.lines); n > 0 && l.p.lines[n-1] != "" {
		l.p.lines = append(l.p.lines, "")
	}
}

// label is the text of a control with each text node's words joined by
// single spaces, or its aria-label when it has no text.
func label(el dom.Element) string {
	var words []string
	if n := el.Node(); n != nil {
		collectWords(n, &words)
	}
	if len(words) > 0 {
		return strings.Join(words, " ")
	}
	if aria := el.Attr("aria-label"); aria != "" {
		return aria
	}
	return "·"
}

func collectWords(n *html.Node, words *[]string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			*words = append(*words, strings.Fields(c.Data)...)
		case html.ElementNode:
			collectWords(c, words)
		}
	}
}

func selectedLabel(el dom.Element) string {
	value := el.Value()
	for _, opt := range el.QuerySelectorAll("option") {
		if optionValue(opt) == value {
			return strings.TrimSpace(opt.Text())
		}
	}
	return value
}

// fieldText pads an input's value, or its placeholder, to the field width.
func fieldText(el dom.Element) string {
	text := el.Value()
	if text == "" {
		text = el.Attr("placeholder")
	}
	width := lipgloss.Width(text) + 1
	width = max(MinFieldWidth, min(width, MaxFieldWidth))
	return " " + padRight(truncate(text, width-1), width-1) + " "
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
