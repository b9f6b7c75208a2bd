package tabview

// ToggleSelect flips the selection of the item with identity id. Identities
// never seen in any collection are ignored.
func (c *Controller) ToggleSelect(id string) {
	c.mu.Lock()
	if _, known := c.seen[id]; !known {
		c.mu.Unlock()
		return
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		c.selected[id] = struct{}{}
	}
	c.mu.Unlock()
	c.notify(ChangeSelection)
}

// SelectAll selects every item matching the current filter, across all pages.
func (c *Controller) SelectAll() {
	c.mu.Lock()
	for _, item := range c.sorted {
		c.selected[item.Identity()] = struct{}{}
	}
	c.mu.Unlock()
	c.notify(ChangeSelection)
}

// DeselectAll clears the selection of every item matching the current filter.
// Selected items hidden by the filter stay selected.
func (c *Controller) DeselectAll() {
	c.mu.Lock()
	for _, item := range c.sorted {
		delete(c.selected, item.Identity())
	}
	c.mu.Unlock()
	c.notify(ChangeSelection)
}

// IsSelected reports whether id is selected and present in the current items.
func (c *Controller) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.selected[id]; !ok {
		return false
	}
	for _, item := range c.items {
		if item.Identity() == id {
			return true
		}
	}
	return false
}

// Selected returns the selected identities present in the current items, in
// source order. Selections for identities absent from the items are kept
// but not reported; they come back if a later collection restores them.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, item := range c.items {
		if _, ok := c.selected[item.Identity()]; ok {
			out = append(out, item.Identity())
		}
	}
	return out
}

func (c *Controller) activeSelectionCount() int {
	n := 0
	for _, item := range c.items {
		if _, ok := c.selected[item.Identity()]; ok {
			n++
		}
	}
	return n
}

func (c *Controller) allSelected(items []Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := c.selected[item.Identity()]; !ok {
			return false
		}
	}
	return true
}
