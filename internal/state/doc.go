// Package state holds the last good data fetched by the poller.
//
// # Overview
//
// Store is the coordination point between the background poller (single
// writer) and the render surfaces (readers). It keeps the most recent
// successful item list and panel status, plus error bookkeeping.
//
//	Producer (poller):              Consumer (TUI / HTTP):
//	  provider.Fetch()                store.Snapshot()
//	  client.FetchStatus()              ↓
//	  store.Update()  ──(RWMutex)──→  ctrl.SetItems() when Generation moved
//
// # Update Semantics
//
//	store.Update(status, items, nil)
//	→ Items, Status replaced; Generation++; LastError = nil; failures reset
//
//	store.Update(nil, nil, err)
//	→ Items, Status, Generation unchanged; LastError = err; failures++
//
// Generation lets readers skip SetItems when nothing new arrived, which keeps
// the view controller from re-deriving on every UI tick.
//
// # Copying
//
// Update and Snapshot copy the item slice header contents so neither side can
// reorder the other's slice. Records themselves are shared and treated as
// immutable once fetched.
//
// The zero Store is ready to use.
package state
