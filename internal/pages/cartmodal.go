package pages

import (
	"html/template"

	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/dom"
	"github.com/five82/shopfront/internal/state"
)

const cartContainerID = "cart-modal-container"

// CartModal is the cart overlay. The checkbox selection is kept here, not in
// the markup, so it survives re-renders.
type CartModal struct {
	doc      *dom.Document
	cart     *state.Cart
	tmpl     *template.Template
	selected map[string]bool
	log      *zap.Logger
}

func newCartModal(doc *dom.Document, cart *state.Cart, tmpl *template.Template, logger *zap.Logger) *CartModal {
	return &CartModal{
		doc:      doc,
		cart:     cart,
		tmpl:     tmpl,
		selected: make(map[string]bool),
		log:      logger,
	}
}

// IsOpen reports whether the overlay is in the document.
func (m *CartModal) IsOpen() bool {
	return !m.container().IsZero()
}

// Open appends the overlay to the body. Opening an open modal re-renders it.
func (m *CartModal) Open() {
	if !m.IsOpen() {
		if _, err := m.doc.Body().AppendHTML(`<div id="` + cartContainerID + `"></div>`); err != nil {
			m.log.Error("open cart modal", zap.Error(err))
			return
		}
	}
	m.Render()
}

// Close removes the overlay and forgets the selection.
func (m *CartModal) Close() {
	if c := m.container(); !c.IsZero() {
		c.Remove()
	}
	clear(m.selected)
}

// Render redraws the open modal from the cart.
func (m *CartModal) Render() {
	c := m.container()
	if c.IsZero() {
		return
	}
	m.prune()
	markup, err := execute(m.tmpl, "cart-modal", newCartView(m.cart.Items(), m.cart.Total(), m.selected))
	if err != nil {
		m.log.Error("render cart modal", zap.Error(err))
		return
	}
	if err := c.SetInnerHTML(markup); err != nil {
		m.log.Error("mount cart modal", zap.Error(err))
	}
}

// Select marks one item.
func (m *CartModal) Select(id string, on bool) {
	if on {
		m.selected[id] = true
	} else {
		delete(m.selected, id)
	}
}

// SelectAll marks or clears every item.
func (m *CartModal) SelectAll(on bool) {
	clear(m.selected)
	if !on {
		return
	}
	for _, it := range m.cart.Items() {
		m.selected[it.ProductID] = true
	}
}

// Selected returns the selected ids in cart order.
func (m *CartModal) Selected() []string {
	var ids []string
	for _, it := range m.cart.Items() {
		if m.selected[it.ProductID] {
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

func (m *CartModal) prune() {
	for id := range m.selected {
		if _, ok := m.cart.Item(id); !ok {
			delete(m.selected, id)
		}
	}
}

func (m *CartModal) container() dom.Element {
	return m.doc.QuerySelector("#" + cartContainerID)
}
