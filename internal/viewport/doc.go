// Package viewport turns "this element scrolled into view" into callbacks.
//
// Observer wraps a single platform visibility primitive and keeps exactly one
// element under watch. InfiniteScroll builds on it: it watches the trigger
// element at the bottom of the product grid and asks for the next page when
// the trigger appears, as long as nothing is loading and more pages exist.
//
// Tracker is the terminal platform. The host lays the page out, then calls
// Tracker.Update with a predicate that answers whether an element's lines
// intersect the visible window (widened by the observer's margin).
package viewport
