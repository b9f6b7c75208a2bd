// Package tabview implements the tabular view controller shared by every
// panelview render surface.
//
// # Overview
//
// A Controller owns one view's state: the source collection, the filter
// string, the sort field and direction, the page size and current page, and
// the set of selected identities. From that state it derives, on every
// mutation, the filtered and sorted list; ViewModel slices out the current
// page and annotates each row with its selection flag.
//
//	items ──> filter ──> stable sort ──> page slice ──> ViewModel
//	                                        ▲
//	selection set (by identity) ────────────┘
//
// # Paging Policy
//
//   - SetFilter and SetPageSize return to page 1
//   - SetSort never moves the page
//   - SetItems and SetPage clamp the page into [1, TotalPages]
//   - PageSizeAll shows the whole sorted list as a single page
//
// # Selection
//
// Selection is tracked by Item.Identity and survives SetItems. An identity
// that disappears from the collection stops rendering as selected but stays
// in the set, so a later refresh that restores it restores the selection.
// SelectAll and DeselectAll act on every row matching the filter, not only
// the visible page.
//
// # Data Providers
//
// The controller performs no I/O. Providers fetch collections; callers pass
// the result to SetItems, or use Refresh, which leaves the last-good items in
// place when the fetch fails.
//
// # Concurrency
//
// Every method takes the controller mutex for its whole mutation, so calls
// from a poller goroutine and a UI goroutine cannot observe torn state.
package tabview
