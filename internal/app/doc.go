// Package app is the composition root of the shopfront client.
//
// # Overview
//
// Run loads the configuration, opens the logger and the key-value storage,
// brings up (or locates) the catalog API, assembles the storefront and hands
// it to the terminal host. Assemble does the same wiring without a terminal,
// which is how the tests drive the whole client.
//
// # Startup
//
//  1. config.Load reads ~/.config/shopfront/config.toml (or --config)
//  2. logging.New writes JSON lines to the configured log file; the terminal
//     belongs to the UI
//  3. storage.Open selects the file, sqlite or memory backend
//  4. With embedded_api the mock API is served on an ephemeral loopback
//     port and api_url points at it
//  5. waitForAPI probes the catalog with backoff; an unreachable API is
//     logged and the client starts anyway so the pages can show the error
//  6. Assemble builds the document, history, router, stores and pages
//  7. Start resolves the first location, then ui.Run blocks until quit
//
// # Data Flow
//
//	┌──────────────┐  keys   ┌────────────┐  DOM events  ┌──────────┐
//	│  ui.Model    │ ──────> │ dom        │ ───────────> │ pages    │
//	│ (Bubble Tea) │ <────── │ Document   │ <─────────── │ App      │
//	└──────┬───────┘ layout  └────────────┘   markup     └────┬─────┘
//	       │ Drain                                            │
//	┌──────┴───────┐  continuations  ┌──────────────┐  calls  │
//	│  loop.Chan   │ <────────────── │ state stores │ <───────┘
//	└──────────────┘                 └──────┬───────┘
//	                                        │ HTTP
//	                                 ┌──────┴───────┐
//	                                 │ catalog API  │
//	                                 └──────────────┘
//
// Store code and the document only run on the Bubble Tea update goroutine.
// Network queries run on their own goroutines and post their results back
// through loop.Chan.
//
// # Error Handling
//
// Startup failures (bad config, logger or storage) are returned from Run.
// Anything after startup is logged and surfaces in the pages, never fatal.
package app
