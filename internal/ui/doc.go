// Package ui provides the interactive terminal surface for panelview.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program wrapping a single tabview.Controller. The
// controller owns filter, sort, paging and selection; the Model only tracks
// the cursor row, the filter input and presentation state (theme, help
// overlay, terminal size). Every frame is rendered from Controller.ViewModel.
//
// # Package Structure
//
//   - app.go: Model, Options, Update loop, key dispatch and Run
//   - keys.go: key bindings (bubbles/key), also used to build the help overlay
//   - header.go: status header, command bar and paging footer
//   - table.go: lipgloss table for the current page
//   - theme.go: color themes and derived lipgloss styles
//   - help.go: keyboard shortcut overlay
//
// # Event Flow
//
//  1. Run starts the program; Init schedules a tick and an immediate snapshot read
//  2. Each tick reads state.Store; when the snapshot generation advanced the
//     rows are pushed into the controller with SetItems
//  3. Keys mutate the controller (SetPage, SetSort, SetFilter, ToggleSelect...)
//  4. View re-derives the page from the controller
//
// Failed polls never clear the table: the store keeps the last-good rows and
// the header switches to STALE, then OFFLINE after repeated failures.
//
// # Key Bindings
//
//   - j/k, g/G: Move cursor, jump to top/bottom of the page
//   - ]/[ or pgdown/pgup: Next/previous page
//   - +/-: Cycle page size through 10, 25, 50, 100 and all
//   - 1-9: Sort by column; pressing again flips the direction
//   - Space: Toggle the cursor row; a/A select or deselect every filtered row
//   - /: Filter rows while typing; enter keeps the filter, esc restores it
//   - esc: Clear the filter
//   - r: Refresh now
//   - T: Cycle theme
//   - h or ?: Help
//   - e or Ctrl+C: Exit
//
// Theme and per-listing page size are persisted through the prefs package.
package ui
