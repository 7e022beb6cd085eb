// Package state holds the storefront's client-side stores: the cart, the
// paged product list, and the product detail view.
//
// # Threading
//
// Stores are confined to the loop goroutine (see package loop). Their
// methods return immediately; network queries run through loop.Go and their
// completions are applied back on the loop. Nothing here takes a lock.
//
// # Rendering
//
// Each store calls a render callback after every state change that the page
// must reflect. Pages install the callback when they initialise. Stores never
// touch the document themselves; the cart publishes events on the bus and the
// detail store reports quantity changes through OnQuantity.
//
// # Stale responses
//
// Filter changes and navigation can overtake a request that is still in
// flight. The product list numbers its fetches and drops any completion older
// than the newest replacing fetch, so a late page 2 cannot be appended to a
// freshly filtered list. The detail store drops completions for anything but
// the most recent FetchDetail call.
package state
