package panel

import (
	"context"

	"github.com/hostpanel/panelview/internal/tabview"
)

// ListingProvider adapts one listing on fetcher to a tabview.Provider.
func ListingProvider(fetcher Fetcher, listing Listing) tabview.Provider {
	return tabview.ProviderFunc(func(ctx context.Context) ([]tabview.Item, error) {
		return fetcher.FetchListing(ctx, listing)
	})
}
