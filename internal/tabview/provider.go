package tabview

import (
	"context"
	"fmt"
)

// Provider supplies the raw collection. Fetch may block on I/O; the
// controller never calls it directly.
type Provider interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) ([]Item, error)

// Fetch implements Provider.
func (f ProviderFunc) Fetch(ctx context.Context) ([]Item, error) {
	return f(ctx)
}

// Refresh fetches from p and hands the result to c. On failure c keeps its
// last-good items and the error is returned for the caller to report.
func Refresh(ctx context.Context, c *Controller, p Provider) error {
	if c == nil || p == nil {
		return fmt.Errorf("refresh requires a controller and a provider")
	}
	items, err := p.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch items: %w", err)
	}
	c.SetItems(items)
	return nil
}
