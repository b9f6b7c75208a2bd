package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hostpanel/panelview/internal/config"
	"github.com/hostpanel/panelview/internal/hitlog"
	"github.com/hostpanel/panelview/internal/panel"
	"github.com/hostpanel/panelview/internal/prefs"
	"github.com/hostpanel/panelview/internal/source"
	"github.com/hostpanel/panelview/internal/tabview"
)

// Source is one table feed: where rows come from and how to present them.
type Source struct {
	// Name keys per-listing preferences such as the page size.
	Name     string
	Title    string
	Provider tabview.Provider
	// Status reports the panel identity; nil for local sources.
	Status  func(ctx context.Context) (*panel.Status, error)
	Columns []string
	// WatchPath is set for file-backed sources so edits trigger a refresh.
	WatchPath string
}

// BuildProvider picks the source for this run. Command-line choices win over
// the config file; with neither, the configured default panel listing is used.
func BuildProvider(cfg config.Config, opts Options, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case opts.SourceFile != "":
		return fileSource(opts.SourceFile), nil
	case opts.HitLog != "":
		return hitlogSource(opts.HitLog, cfg.HitLogMaxLines, logger), nil
	case opts.Listing != "":
		return panelSource(cfg, opts.Listing, logger)
	case cfg.SourceFile != "":
		return fileSource(cfg.SourceFile), nil
	case cfg.HitLog != "":
		return hitlogSource(cfg.HitLog, cfg.HitLogMaxLines, logger), nil
	default:
		return panelSource(cfg, cfg.DefaultListing, logger)
	}
}

func fileSource(path string) Source {
	return Source{
		Name:      "file:" + filepath.Base(path),
		Title:     filepath.Base(path),
		Provider:  source.FileProvider{Path: path, Identity: source.DefaultIdentity},
		WatchPath: path,
	}
}

func hitlogSource(path string, maxLines int, logger *zap.Logger) Source {
	return Source{
		Name:      "hitlog",
		Title:     "Hits: " + filepath.Base(path),
		Provider:  hitlog.Provider{Path: path, MaxLines: maxLines, Logger: logger},
		Columns:   hitlog.Columns,
		WatchPath: path,
	}
}

func panelSource(cfg config.Config, name string, logger *zap.Logger) (Source, error) {
	catalog := panel.NewCatalog(customListings(cfg.Listings)...)
	listing, err := catalog.Lookup(name)
	if err != nil {
		return Source{}, err
	}

	client, err := panel.NewClient(panel.ClientConfig{
		BaseURL:            cfg.APIURL,
		Kind:               cfg.APIKind,
		Username:           cfg.Username,
		Token:              cfg.Token,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Logger:             logger,
	})
	if err != nil {
		return Source{}, fmt.Errorf("init panel client: %w", err)
	}
	if listing.Kind != client.Kind() {
		return Source{}, fmt.Errorf("listing %q needs api_kind %s, configured %s: %w",
			listing.Name, listing.Kind, client.Kind(), panel.ErrKindMismatch)
	}

	return Source{
		Name:     listing.Name,
		Title:    listing.Title,
		Provider: panel.ListingProvider(client, listing),
		Status:   client.FetchStatus,
		Columns:  listing.Columns,
	}, nil
}

func customListings(in []config.Listing) []panel.Listing {
	out := make([]panel.Listing, 0, len(in))
	for _, l := range in {
		out = append(out, panel.Listing{
			Name:     l.Name,
			Title:    l.Title,
			Kind:     strings.ToLower(strings.TrimSpace(l.API)),
			Module:   l.Module,
			Function: l.Function,
			DataPath: l.DataPath,
			Identity: l.Identity,
			Columns:  l.Columns,
			Params:   l.Params,
		})
	}
	return out
}

// newController builds the controller for src. The page size comes from the
// command line, then the per-listing preference, then the config.
func newController(cfg config.Config, src Source, userPrefs prefs.Prefs, view View, logger *zap.Logger) (*tabview.Controller, error) {
	search := tabview.DefaultSearchText
	if len(src.Columns) > 0 {
		search = tabview.FieldsSearchText(src.Columns...)
	}

	size := cfg.PageSize
	if remembered := userPrefs.PageSize(src.Name); remembered != 0 {
		size = remembered
	}
	if view.PageSize != 0 {
		size = view.PageSize
	}

	opts := []tabview.Option{
		tabview.WithLogger(logger),
		tabview.WithSearchText(search),
		tabview.WithPageSize(size),
	}

	switch cfg.FilterMode {
	case config.FilterRegex:
		opts = append(opts, tabview.WithPredicate(tabview.RegexPredicate(search)))
	case config.FilterJQ:
		pred, err := tabview.JQPredicate(cfg.JQFilter)
		if err != nil {
			return nil, fmt.Errorf("jq_filter: %w", err)
		}
		opts = append(opts, tabview.WithPredicate(pred))
	}

	if view.Sort != "" {
		dir := tabview.Ascending
		if view.Desc {
			dir = tabview.Descending
		}
		opts = append(opts, tabview.WithSort(view.Sort, dir))
	}
	if view.SelectFiltered {
		opts = append(opts, tabview.WithSelectScope(tabview.ScopeFiltered))
	}

	ctrl := tabview.New(opts...)
	if view.Filter != "" {
		ctrl.SetFilter(view.Filter)
	}
	return ctrl, nil
}
