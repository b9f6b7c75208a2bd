// Package app provides the orchestration layer for panelview.
//
// # Overview
//
// This package wires together configuration, preferences, logging, the data
// source, the view controller and one render surface. It is the composition
// root for the three commands: the interactive TUI (Run), a one-shot dump
// (List) and the HTML surface (Serve).
//
// # Architecture
//
//	┌──────────────┐
//	│   open()     │ Resolve everything a surface needs
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()       Read ~/.config/panelview/config.toml
//	       ├─────> logging.New()       File for the TUI, stderr otherwise
//	       ├─────> prefs.Load()        Theme and remembered page sizes
//	       ├─────> BuildProvider()     Panel listing, data file or access log
//	       └─────> newController()     Filter mode, page size, initial sort
//
//	Background Poller Loop:
//	┌─────────────────────────────────────────┐
//	│ StartPoller() goroutine                 │
//	│  ├─> Provider.Fetch()   ┐ errgroup      │
//	│  ├─> Source.Status()    ┘               │
//	│  └─> store.Update()                     │
//	│      └─> surfaces read store.Snapshot() │
//	└─────────────────────────────────────────┘
//
// File-backed sources also start a source.Watcher whose callback is
// Poller.Trigger, so a rewritten file shows up without waiting for the next
// tick.
//
// # Source Selection
//
// BuildProvider takes the first of: --source, --hitlog, --listing,
// source_file, hit_log, default_listing.
//
// # Polling Behavior
//
// The poller fetches once at start and then every poll_seconds (default 30).
// After a failure the wait doubles per consecutive failure, capped at five
// minutes or the poll interval, whichever is longer. Failed polls keep the last-good rows in the store; the error and
// failure count are recorded for the surfaces to show.
//
// # Error Handling
//
// Fatal errors (returned):
//   - Invalid configuration or an unknown listing
//   - A listing whose API kind does not match api_kind
//   - An invalid jq_filter expression
//   - List only: the single fetch failing
//
// Recoverable errors (logged, polling continues):
//   - Panel or file fetch failures during polling
//   - The file watcher failing to start
package app
