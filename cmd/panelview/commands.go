package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hostpanel/panelview/internal/app"
	"github.com/hostpanel/panelview/internal/tabview"
)

// runners are the entry points the commands call; tests swap them out.
type runners struct {
	tui   func(ctx context.Context, opts app.Options) error
	list  func(ctx context.Context, opts app.Options, out io.Writer) error
	serve func(ctx context.Context, opts app.Options) error
}

func defaultRunners() runners {
	return runners{tui: app.Run, list: app.List, serve: app.Serve}
}

// viewFlags are the initial view settings shared by every command.
type viewFlags struct {
	filter         string
	sort           string
	desc           bool
	page           int
	pageSize       string
	selectFiltered bool
	columns        []string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&f.filter, "filter", "", "initial filter text")
	flags.StringVar(&f.sort, "sort", "", "sort by this field")
	flags.BoolVar(&f.desc, "desc", false, "sort descending")
	flags.IntVar(&f.page, "page", 0, "page to show (list only)")
	flags.StringVar(&f.pageSize, "page-size", "", `rows per page, or "all"`)
	flags.BoolVar(&f.selectFiltered, "select-filtered", false, "report all-selected over every filtered row instead of the page")
	flags.StringSliceVar(&f.columns, "columns", nil, "columns to show, in order")
}

func (f *viewFlags) view() (app.View, error) {
	size, err := parsePageSize(f.pageSize)
	if err != nil {
		return app.View{}, err
	}
	return app.View{
		Filter:         f.filter,
		Sort:           f.sort,
		Desc:           f.desc,
		Page:           f.page,
		PageSize:       size,
		SelectFiltered: f.selectFiltered,
		Columns:        f.columns,
	}, nil
}

func newRootCmd(r runners) *cobra.Command {
	var (
		opts app.Options
		vf   viewFlags
	)

	// options assembles app.Options from the parsed flags.
	options := func() (app.Options, error) {
		view, err := vf.view()
		if err != nil {
			return app.Options{}, err
		}
		o := opts
		o.View = view
		return o, nil
	}

	root := &cobra.Command{
		Use:   "panelview",
		Short: "Browse cPanel and WHM listings as filterable, sortable tables",
		Long: `panelview shows hosting panel listings (email accounts, FTP users,
databases, WHM accounts), local JSON/YAML files or access logs as a table you
can filter, sort, page through and select from.

Without a subcommand it starts the interactive terminal view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := options()
			if err != nil {
				return err
			}
			return r.tui(cmd.Context(), o)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/panelview/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/panelview/prefs.toml)")
	flags.StringVarP(&opts.Listing, "listing", "l", "", "panel listing to show (accounts, email, ftp, databases, subdomains or a custom one)")
	flags.StringVar(&opts.SourceFile, "source", "", "read rows from a JSON or YAML file instead of the panel")
	flags.StringVar(&opts.HitLog, "hitlog", "", "read rows from an access log in combined log format")
	flags.IntVar(&opts.PollEvery, "poll", 0, "refresh interval in seconds (default from config)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	vf.register(root)

	list := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the listing and exit",
		Example: `  panelview list --listing email --sort email --page-size 50
  panelview list --source users.yaml --filter admin --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := options()
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			o.View.Format = format
			return r.list(cmd.Context(), o, cmd.OutOrStdout())
		},
	}
	list.Flags().StringP("format", "o", "table", "output format: table, json, yaml or html")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the listing as an HTML table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := options()
			if err != nil {
				return err
			}
			return r.serve(cmd.Context(), o)
		},
	}
	serve.Flags().StringVar(&opts.Listen, "listen", "", "listen address (default from config, 127.0.0.1:8765)")

	root.AddCommand(list, serve)
	return root
}

func parsePageSize(value string) (int, error) {
	switch value {
	case "":
		return 0, nil
	case "all":
		return tabview.PageSizeAll, nil
	}
	size, err := strconv.Atoi(value)
	if err != nil || size <= 0 {
		return 0, fmt.Errorf("invalid --page-size %q: want a positive number or \"all\"", value)
	}
	return size, nil
}
