package tabview

import "go.uber.org/zap"

// Option configures a Controller at construction time.
type Option func(*Controller)

// WithItems seeds the controller with an initial synchronous collection.
func WithItems(items []Item) Option {
	return func(c *Controller) {
		c.items = cloneItems(items)
	}
}

// WithPageSize sets the initial page size. Invalid sizes are ignored.
func WithPageSize(size int) Option {
	return func(c *Controller) {
		if validPageSize(size) {
			c.pageSize = size
		}
	}
}

// WithSort sets the initial sort field and direction.
func WithSort(field string, dir Direction) Option {
	return func(c *Controller) {
		c.sortBy = field
		c.sortDir = normalizeDirection(dir)
	}
}

// WithPredicate overrides the default substring filter.
func WithPredicate(p Predicate) Option {
	return func(c *Controller) {
		if p != nil {
			c.predicate = p
		}
	}
}

// WithSearchText overrides how an item is stringified for the default filter.
// DefaultSearchText leaves the identity out.
func WithSearchText(fn SearchTextFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.searchText = fn
		}
	}
}

// WithComparator installs a custom ordering for one field.
func WithComparator(field string, cmp Comparator) Option {
	return func(c *Controller) {
		if cmp != nil {
			c.comparators[field] = cmp
		}
	}
}

// WithSelectScope chooses which set AllSelected is evaluated over.
func WithSelectScope(scope SelectScope) Option {
	return func(c *Controller) {
		c.scope = scope
	}
}

// WithChangeHook registers fn to run after every state mutation. It is called
// without the controller lock held, so it may read the view model.
func WithChangeHook(fn func(Change)) Option {
	return func(c *Controller) {
		c.hook = fn
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}
