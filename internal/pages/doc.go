// Package pages renders the storefront pages into the document and wires
// their delegated events to the stores.
//
// Three routes are served: the product list at "/", the product detail at
// "/product/:productId" and a not-found page. The cart modal is an overlay
// appended to the document body and survives navigation. Markup comes from
// embedded html/template files; every render replaces the #root content
// wholesale, so handlers are bound once on the document and find their
// element through selector delegation.
package pages
