package ui

import "time"

// DefaultUIInterval is how often the UI re-reads the snapshot store.
const DefaultUIInterval = time.Second
