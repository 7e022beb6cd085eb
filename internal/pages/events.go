package pages

import (
	"strings"

	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/dom"
	"github.com/five82/shopfront/internal/state"
)

type eventBinding struct {
	event    string
	selector string
	handler  dom.Handler
}

func (a *App) eventBindings() []eventBinding {
	return []eventBinding{
		// list page
		{"input", "#search-input", a.onSearchInput},
		{"keydown", "#search-input", a.onSearchKey},
		{"change", "#limit-select", a.onLimitChange},
		{"change", "#sort-select", a.onSortChange},
		{"click", "#retry-button", a.onRetry},
		{"click", ".category1-filter-btn", a.onCategory1},
		{"click", ".category2-filter-btn", a.onCategory2},
		{"click", "[data-breadcrumb='reset']", a.onBreadcrumbReset},
		{"click", "[data-breadcrumb='category1']", a.onCategory1},
		{"click", "[data-breadcrumb='category2']", a.onCategory2},
		{"click", ".product-image, .product-info", a.onProductClick},
		{"click", ".add-to-cart-btn", a.onCardAddToCart},

		// header and cart modal
		{"click", "#cart-icon-btn", func(*dom.Event) { a.modal.Open() }},
		{"click", "#cart-modal-close-btn", func(*dom.Event) { a.modal.Close() }},
		{"click", ".cart-modal-overlay", a.onOverlayClick},
		{"keydown", "body", a.onBodyKey},
		{"change", "#cart-modal-select-all-checkbox", a.onSelectAll},
		{"change", ".cart-item-checkbox", a.onSelectItem},
		{"click", ".quantity-increase-btn", a.onCartIncrease},
		{"click", ".quantity-decrease-btn", a.onCartDecrease},
		{"change", ".quantity-input", a.onCartQuantity},
		{"click", ".cart-item-remove-btn", a.onCartRemove},
		{"click", "#cart-modal-remove-selected-btn", a.onRemoveSelected},
		{"click", "#cart-modal-clear-cart-btn", a.onClearCart},
		{"click", "#cart-modal-checkout-btn", func(*dom.Event) { a.modal.Close() }},

		// detail page
		{"click", "#quantity-increase", func(*dom.Event) { a.detail.Increase() }},
		{"click", "#quantity-decrease", func(*dom.Event) { a.detail.Decrease() }},
		{"change", "#quantity-input", a.onDetailQuantity},
		{"blur", "#quantity-input", a.onDetailQuantity},
		{"keydown", "#quantity-input", a.onDetailQuantityKey},
		{"click", "#add-to-cart-btn", func(*dom.Event) { a.detail.AddToCart() }},
		{"click", ".related-product-card", a.onRelatedClick},
		{"click", ".go-to-product-list", func(*dom.Event) { a.navigateWithSort(ListPath) }},
		{"click", "#detail-back-btn", func(*dom.Event) { a.history.Back() }},
	}
}

func (a *App) bindEvents() error {
	for _, b := range a.eventBindings() {
		if err := a.doc.On(b.event, b.selector, b.handler); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) unbindEvents() {
	for _, b := range a.eventBindings() {
		a.doc.Off(b.event, b.selector)
	}
}

func (a *App) onSearchInput(ev *dom.Event) {
	a.search = strings.TrimSpace(ev.Value)
}

func (a *App) onSearchKey(ev *dom.Event) {
	if ev.Key != "Enter" {
		return
	}
	ev.PreventDefault()
	a.list.UpdateFilters(a.ctx, state.FilterPatch{state.KeySearch: a.search})
}

func (a *App) onLimitChange(ev *dom.Event) {
	a.list.UpdateFilters(a.ctx, state.FilterPatch{state.KeyLimit: ev.Value})
}

func (a *App) onSortChange(ev *dom.Event) {
	a.list.UpdateFilters(a.ctx, state.FilterPatch{state.KeySort: ev.Value})
}

func (a *App) onRetry(*dom.Event) {
	a.list.Retry(a.ctx)
}

func (a *App) onCategory1(ev *dom.Event) {
	ev.PreventDefault()
	a.list.UpdateFilters(a.ctx, state.FilterPatch{
		state.KeyCategory1: dataOrText(ev.CurrentTarget, "category1"),
		state.KeyCategory2: "",
	})
}

func (a *App) onCategory2(ev *dom.Event) {
	ev.PreventDefault()
	a.list.UpdateFilters(a.ctx, state.FilterPatch{
		state.KeyCategory2: dataOrText(ev.CurrentTarget, "category2"),
	})
}

func (a *App) onBreadcrumbReset(ev *dom.Event) {
	ev.PreventDefault()
	a.list.UpdateFilters(a.ctx, state.FilterPatch{state.KeyCategory1: "", state.KeyCategory2: ""})
}

func (a *App) onProductClick(ev *dom.Event) {
	ev.PreventDefault()
	id := ev.CurrentTarget.Data("product-id")
	if id == "" {
		a.log.Warn("product card without an id")
		return
	}
	a.navigateWithSort("/product/" + id)
}

func (a *App) onCardAddToCart(ev *dom.Event) {
	ev.PreventDefault()
	id := ev.CurrentTarget.Data("product-id")
	p, ok := a.list.Find(id)
	if !ok {
		a.log.Warn("add to cart: product not in list", zap.String("product", id))
		return
	}
	a.cart.Add(p, 1)
}

func (a *App) onOverlayClick(ev *dom.Event) {
	if ev.Target == ev.CurrentTarget {
		a.modal.Close()
	}
}

func (a *App) onBodyKey(ev *dom.Event) {
	if ev.Key == "Escape" && a.modal.IsOpen() {
		a.modal.Close()
	}
}

func (a *App) onSelectAll(ev *dom.Event) {
	a.modal.SelectAll(ev.Target.Checked())
	a.modal.Render()
}

func (a *App) onSelectItem(ev *dom.Event) {
	a.modal.Select(ev.CurrentTarget.Data("product-id"), ev.CurrentTarget.Checked())
	a.modal.Render()
}

func (a *App) onCartIncrease(ev *dom.Event) {
	id := ev.CurrentTarget.Data("product-id")
	if item, ok := a.cart.Item(id); ok {
		a.cart.UpdateQuantity(id, item.Quantity+1)
	}
}

func (a *App) onCartDecrease(ev *dom.Event) {
	id := ev.CurrentTarget.Data("product-id")
	if item, ok := a.cart.Item(id); ok && item.Quantity > 1 {
		a.cart.UpdateQuantity(id, item.Quantity-1)
	}
}

func (a *App) onCartQuantity(ev *dom.Event) {
	q, ok := parseLeadingInt(ev.Value)
	if !ok || q == 0 {
		q = 1
	}
	a.cart.UpdateQuantity(ev.CurrentTarget.Data("product-id"), q)
}

func (a *App) onCartRemove(ev *dom.Event) {
	a.cart.Remove(ev.CurrentTarget.Data("product-id"))
}

func (a *App) onRemoveSelected(*dom.Event) {
	a.cart.RemoveSelected(a.modal.Selected())
}

func (a *App) onClearCart(*dom.Event) {
	a.cart.Clear()
	a.modal.Close()
}

func (a *App) onDetailQuantity(ev *dom.Event) {
	a.detail.UpdateQuantity(ev.Value)
}

func (a *App) onDetailQuantityKey(ev *dom.Event) {
	if ev.Key != "Enter" {
		return
	}
	ev.PreventDefault()
	a.detail.UpdateQuantity(ev.Value)
}

func (a *App) onRelatedClick(ev *dom.Event) {
	if id := ev.CurrentTarget.Data("product-id"); id != "" {
		a.router.Navigate("/product/" + id)
	}
}

func dataOrText(el dom.Element, name string) string {
	if v := el.Data(name); v != "" {
		return v
	}
	return el.Text()
}

// parseLeadingInt reads an optional sign and the digits that follow, the way
// a number input's text is read: "3.5" is 3, "12abc" is 12.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' || n > 1<<30 {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
