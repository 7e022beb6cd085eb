// Package ui is the terminal host for the storefront: a small keyboard
// browser built on Bubble Tea that shows the client's document and feeds
// user input back to it as DOM events.
//
// # Architecture Overview
//
// The storefront client renders HTML into a dom.Document and reacts to
// delegated events. This package plays the part a web browser would:
//
//   - render.go: lays the document out as terminal lines and records the
//     lines each element occupies and the order of focusable controls
//   - focus.go: control helpers and the keys that keep focus on the same
//     control across re-renders
//   - app.go: the Bubble Tea model, key handling, and the task loop bridge
//   - chrome.go: header, status line (toasts), and command bar
//   - logs.go: the log tail overlay
//   - help.go, keys.go, theme.go: help overlay, bindings, and color themes
//
// # Event Flow
//
//  1. Run starts the program; a command waits on the loop.Chan task queue
//  2. Posted continuations (finished API calls) are drained inside Update,
//     so store code and the document only ever run on the Update goroutine
//  3. After every input or drain the document is laid out again if its
//     revision moved, and viewport.Tracker is told what is on screen so
//     the infinite scroll trigger can fire
//  4. Keys on the focused control become click, change, input, keydown,
//     and blur events dispatched through the document
//
// # Key Bindings
//
//   - tab/shift+tab: move focus between controls
//   - enter: click; toggles checkboxes and cycles selects (firing change)
//   - i or enter on an input: edit it; typing fires input, enter fires
//     keydown Enter then change, esc leaves with blur then change
//   - j/k, pgup/pgdown, home/G: scroll
//   - b/f: history back and forward; g: type an address
//   - esc: keydown Escape on the body (closes the cart)
//   - ?: help, L: log tail, T: cycle theme, ctrl+c: quit
package ui
