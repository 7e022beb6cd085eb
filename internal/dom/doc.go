// Package dom holds the in-memory HTML document the storefront renders into
// and the delegated event registry that reacts to it.
//
// Pages replace the content of the #root mount point with freshly rendered
// markup on every state change, so handlers are never attached to individual
// nodes. Instead a handler is bound once per (event type, selector) pair on
// the document; Dispatch walks from the event target up through its ancestors
// and calls the handler with the closest matching element.
//
//	doc := dom.New(logger)
//	_ = doc.On("click", ".add-to-cart-btn", func(ev *dom.Event) {
//		id := ev.CurrentTarget.Data("product-id")
//		...
//	})
//	_ = doc.SetRootHTML(markup)
//	doc.Dispatch(&dom.Event{Type: "click", Target: button})
//
// Node access goes through Element, a small comparable handle around an
// *html.Node. The zero Element means "not found".
package dom
