package app

import (
	"context"
	"fmt"
	"io"

	"github.com/hostpanel/panelview/internal/render"
	"github.com/hostpanel/panelview/internal/tabview"
)

// List fetches the source once, applies the requested view and writes it to
// out in the requested format. It logs to stderr.
func List(ctx context.Context, opts Options, out io.Writer) error {
	format, err := render.ParseFormat(opts.View.Format)
	if err != nil {
		return err
	}

	s, err := open(opts, false)
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	if err := tabview.Refresh(ctx, s.ctrl, s.src.Provider); err != nil {
		return fmt.Errorf("%s: %w", s.src.Title, err)
	}
	if opts.View.Page > 0 {
		s.ctrl.SetPage(opts.View.Page)
	}

	vm := s.ctrl.ViewModel()
	columns := columnsFor(opts, s.src)
	if format != render.FormatHTML {
		return render.Write(out, format, vm, columns, nil)
	}

	html, err := render.NewHTMLRenderer()
	if err != nil {
		return err
	}
	return html.Render(out, render.Page{Title: s.src.Title, View: vm, Columns: columns})
}
