package pages

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/dom"
)

const (
	cartButtonSelector = "#cart-icon-btn"
	badgeSelector      = "#cart-icon-btn .cart-badge"
)

// Badge keeps the item count on the header cart button in sync with the cart.
type Badge struct {
	doc   *dom.Document
	count func() int
	log   *zap.Logger
}

// NewBadge returns a badge showing count().
func NewBadge(doc *dom.Document, count func() int, logger *zap.Logger) *Badge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Badge{doc: doc, count: count, log: logger}
}

// Update writes the current count. The badge element is created on first
// need and removed when the cart is empty.
func (b *Badge) Update() {
	button := b.doc.QuerySelector(cartButtonSelector)
	if button.IsZero() {
		return
	}
	n := b.count()
	badge := b.doc.QuerySelector(badgeSelector)
	switch {
	case n == 0:
		if !badge.IsZero() {
			badge.Remove()
		}
	case badge.IsZero():
		if _, err := button.AppendHTML(`<span class="cart-badge">` + strconv.Itoa(n) + `</span>`); err != nil {
			b.log.Warn("append cart badge", zap.Error(err))
		}
	default:
		badge.SetText(strconv.Itoa(n))
	}
}
