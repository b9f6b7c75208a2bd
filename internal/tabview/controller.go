package tabview

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// PageSizeAll is the page size sentinel that shows every row on one page.
const PageSizeAll = -1

// DefaultPageSize is used when no page size option is given.
const DefaultPageSize = 20

// SelectScope selects the set AllSelected is computed over.
type SelectScope int

const (
	// ScopePage evaluates AllSelected over the visible page.
	ScopePage SelectScope = iota
	// ScopeFiltered evaluates AllSelected over every row matching the filter.
	ScopeFiltered
)

// Predicate reports whether item matches a non-empty filter string.
type Predicate func(item Item, filter string) bool

// SearchTextFunc stringifies an item for the default filter predicate.
type SearchTextFunc func(item Item) string

// Change identifies which mutation triggered a change hook.
type Change string

const (
	ChangeItems     Change = "items"
	ChangeFilter    Change = "filter"
	ChangeSort      Change = "sort"
	ChangePage      Change = "page"
	ChangePageSize  Change = "page_size"
	ChangeSelection Change = "selection"
)

// Row is one rendered row of the current page.
type Row struct {
	Item     Item `json:"item" yaml:"item"`
	Selected bool `json:"selected" yaml:"selected"`
}

// ViewModel is the derived state consumed by render surfaces.
type ViewModel struct {
	Rows          []Row     `json:"rows" yaml:"rows"`
	TotalItems    int       `json:"totalItems" yaml:"totalItems"`
	TotalPages    int       `json:"totalPages" yaml:"totalPages"`
	CurrentPage   int       `json:"currentPage" yaml:"currentPage"`
	PageSize      int       `json:"pageSize" yaml:"pageSize"`
	SortBy        string    `json:"sortBy" yaml:"sortBy"`
	SortDirection Direction `json:"sortDirection" yaml:"sortDirection"`
	FilterValue   string    `json:"filterValue" yaml:"filterValue"`
	AllSelected   bool      `json:"allSelected" yaml:"allSelected"`
	SelectedCount int       `json:"selectedCount" yaml:"selectedCount"`
	SourceItems   int       `json:"sourceItems" yaml:"sourceItems"`
}

// State is the user-chosen view configuration, without derived data.
type State struct {
	FilterValue   string
	SortBy        string
	SortDirection Direction
	PageSize      int
	CurrentPage   int
}

// Controller owns one view's state and derives its ViewModel. All methods are
// safe for concurrent use; each call completes its mutation and re-derivation
// before returning.
type Controller struct {
	mu sync.Mutex

	items       []Item
	seen        map[string]struct{}
	selected    map[string]struct{}
	filterValue string
	sortBy      string
	sortDir     Direction
	pageSize    int
	currentPage int

	predicate   Predicate
	searchText  SearchTextFunc
	comparators map[string]Comparator
	scope       SelectScope
	hook        func(Change)
	logger      *zap.Logger
	fold        cases.Caser

	// sorted is filter+sort of items, rebuilt by rederive.
	sorted []Item
}

// New builds a Controller. With no options it starts empty, unsorted, on
// page 1 with DefaultPageSize rows per page.
func New(opts ...Option) *Controller {
	c := &Controller{
		seen:        map[string]struct{}{},
		selected:    map[string]struct{}{},
		sortDir:     Ascending,
		pageSize:    DefaultPageSize,
		currentPage: 1,
		comparators: map[string]Comparator{},
		logger:      zap.NewNop(),
		fold:        cases.Fold(),
	}
	c.searchText = DefaultSearchText
	for _, opt := range opts {
		opt(c)
	}
	c.remember(c.items)
	c.rederive()
	return c
}

// SetItems replaces the source collection. Filter, sort and selection are kept.
func (c *Controller) SetItems(items []Item) {
	c.mu.Lock()
	c.items = cloneItems(items)
	c.remember(c.items)
	c.rederive()
	c.logger.Debug("items replaced",
		zap.Int("items", len(c.items)),
		zap.Int("matching", len(c.sorted)),
		zap.Int("page", c.currentPage))
	c.mu.Unlock()
	c.notify(ChangeItems)
}

// SetFilter sets the filter string and returns to the first page.
func (c *Controller) SetFilter(value string) {
	c.mu.Lock()
	c.filterValue = value
	c.currentPage = 1
	c.rederive()
	c.mu.Unlock()
	c.notify(ChangeFilter)
}

// SetSort sorts by field ascending, or flips the direction when field is
// already the sort field. An empty field restores source order. The current
// page is left alone.
func (c *Controller) SetSort(field string) {
	c.mu.Lock()
	switch {
	case field == "":
		c.sortBy = ""
		c.sortDir = Ascending
	case field == c.sortBy:
		if c.sortDir == Ascending {
			c.sortDir = Descending
		} else {
			c.sortDir = Ascending
		}
	default:
		c.sortBy = field
		c.sortDir = Ascending
	}
	c.rederive()
	c.mu.Unlock()
	c.notify(ChangeSort)
}

// SetSortOrder sets field and direction explicitly. The current page is left alone.
func (c *Controller) SetSortOrder(field string, dir Direction) {
	c.mu.Lock()
	c.sortBy = field
	c.sortDir = normalizeDirection(dir)
	c.rederive()
	c.mu.Unlock()
	c.notify(ChangeSort)
}

// SetPage moves to page, clamped into [1, TotalPages].
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	c.currentPage = page
	c.clampPage()
	c.mu.Unlock()
	c.notify(ChangePage)
}

// SetPageSize sets the rows per page and returns to the first page. Sizes
// other than a positive integer or PageSizeAll are ignored.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	if !validPageSize(size) {
		c.logger.Debug("page size rejected", zap.Int("size", size), zap.Int("kept", c.pageSize))
		c.mu.Unlock()
		return
	}
	c.pageSize = size
	c.currentPage = 1
	c.clampPage()
	c.mu.Unlock()
	c.notify(ChangePageSize)
}

// State returns the current view configuration.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		FilterValue:   c.filterValue,
		SortBy:        c.sortBy,
		SortDirection: c.sortDir,
		PageSize:      c.pageSize,
		CurrentPage:   c.currentPage,
	}
}

// ViewModel returns the derived view. It does not mutate the controller.
func (c *Controller) ViewModel() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	page := c.pageSlice()
	rows := make([]Row, len(page))
	for i, item := range page {
		_, sel := c.selected[item.Identity()]
		rows[i] = Row{Item: item, Selected: sel}
	}

	scopeItems := page
	if c.scope == ScopeFiltered {
		scopeItems = c.sorted
	}

	return ViewModel{
		Rows:          rows,
		TotalItems:    len(c.sorted),
		TotalPages:    c.totalPages(),
		CurrentPage:   c.currentPage,
		PageSize:      c.pageSize,
		SortBy:        c.sortBy,
		SortDirection: c.sortDir,
		FilterValue:   c.filterValue,
		AllSelected:   c.allSelected(scopeItems),
		SelectedCount: c.activeSelectionCount(),
		SourceItems:   len(c.items),
	}
}

func (c *Controller) notify(change Change) {
	if c.hook != nil {
		c.hook(change)
	}
}

func (c *Controller) remember(items []Item) {
	for _, item := range items {
		c.seen[item.Identity()] = struct{}{}
	}
}

// rederive rebuilds the filtered+sorted list and clamps the page. Callers hold mu.
func (c *Controller) rederive() {
	c.sorted = sortItems(c.filterItems(), c.sortBy, c.sortDir, c.comparators[c.sortBy], c.fold)
	c.clampPage()
}

func (c *Controller) clampPage() {
	total := c.totalPages()
	if c.currentPage > total {
		c.currentPage = total
	}
	if c.currentPage < 1 {
		c.currentPage = 1
	}
}

func (c *Controller) totalPages() int {
	if c.pageSize == PageSizeAll || len(c.sorted) == 0 {
		return 1
	}
	return (len(c.sorted)-1)/c.pageSize + 1
}

func (c *Controller) pageSlice() []Item {
	if c.pageSize == PageSizeAll {
		return c.sorted
	}
	start := (c.currentPage - 1) * c.pageSize
	if start >= len(c.sorted) {
		return nil
	}
	end := start + min(c.pageSize, len(c.sorted)-start)
	return c.sorted[start:end]
}

func (c *Controller) filterItems() []Item {
	if strings.TrimSpace(c.filterValue) == "" {
		return c.items
	}
	needle := c.filterValue
	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		if c.matches(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func (c *Controller) matches(item Item, needle string) bool {
	if c.predicate != nil {
		return c.predicate(item, needle)
	}
	return strings.Contains(c.fold.String(c.searchText(item)), c.fold.String(needle))
}

func validPageSize(size int) bool {
	return size > 0 || size == PageSizeAll
}

func normalizeDirection(dir Direction) Direction {
	if strings.EqualFold(string(dir), string(Descending)) {
		return Descending
	}
	return Ascending
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
