package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hostpanel/panelview/internal/config"
	"github.com/hostpanel/panelview/internal/logging"
	"github.com/hostpanel/panelview/internal/prefs"
	"github.com/hostpanel/panelview/internal/source"
	"github.com/hostpanel/panelview/internal/state"
	"github.com/hostpanel/panelview/internal/tabview"
	"github.com/hostpanel/panelview/internal/ui"
)

// Options configure a panelview run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/panelview/prefs.toml

	// At most one source override; see BuildProvider for precedence.
	Listing    string
	SourceFile string
	HitLog     string

	PollEvery int // seconds; zero uses the config
	Verbose   bool
	Listen    string // serve only; empty uses the config

	// Logger replaces the configured logger when set.
	Logger *zap.Logger

	View View
}

// View is the initial view state requested on the command line.
type View struct {
	Filter         string
	Sort           string
	Desc           bool
	Page           int
	PageSize       int
	SelectFiltered bool
	Format         string
	Columns        []string
}

// session is everything a surface needs once config has been resolved.
type session struct {
	cfg    config.Config
	prefs  prefs.Prefs
	logger *zap.Logger
	src    Source
	ctrl   *tabview.Controller
}

// open loads config and prefs and builds the logger, source and controller.
// logFile selects the config's log file over stderr.
func open(opts Options, logFile bool) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		level := cfg.LogLevel
		if opts.Verbose {
			level = "debug"
		}
		target := ""
		if logFile {
			target = cfg.LogFile
			if target == "" {
				target = config.DefaultLogPath()
			}
		}
		logger, err = logging.New(level, target)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs failed, using defaults", zap.Error(err))
	}

	src, err := BuildProvider(cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	ctrl, err := newController(cfg, src, userPrefs, opts.View, logger)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, prefs: userPrefs, logger: logger, src: src, ctrl: ctrl}, nil
}

func (s *session) pollInterval(opts Options) time.Duration {
	if opts.PollEvery > 0 {
		return time.Duration(opts.PollEvery) * time.Second
	}
	if s.cfg.PollSeconds > 0 {
		return time.Duration(s.cfg.PollSeconds) * time.Second
	}
	return defaultPollInterval
}

// startFeed starts the poller and, for file sources, a watcher that asks the
// poller for a refresh whenever the file is rewritten. stop cancels both and
// waits for them to exit.
func (s *session) startFeed(ctx context.Context, store *state.Store, opts Options) (p *Poller, stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	p = StartPoller(ctx, store, s.src, s.pollInterval(opts), s.logger)

	var watcher *source.Watcher
	if s.src.WatchPath != "" {
		w, err := source.NewWatcher(s.src.WatchPath, p.Trigger, s.logger)
		if err == nil {
			if err = w.Start(ctx); err != nil {
				w.Stop()
			}
		}
		if err != nil {
			s.logger.Warn("file watch disabled", zap.String("path", s.src.WatchPath), zap.Error(err))
		} else {
			watcher = w
		}
	}

	return p, func() {
		cancel()
		if watcher != nil {
			watcher.Stop()
		}
		<-p.Done()
	}
}

// Run boots the panelview TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	s, err := open(opts, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	s.logger.Info("starting tui", zap.String("source", s.src.Name))

	store := &state.Store{}
	poller, stop := s.startFeed(ctx, store, opts)
	defer stop()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Store:      store,
		Controller: s.ctrl,
		Title:      s.src.Title,
		Listing:    s.src.Name,
		Columns:    columnsFor(opts, s.src),
		Prefs:      s.prefs,
		PrefsPath:  prefsPath,
		Refresh:    poller.Trigger,
		Logger:     s.logger,
	})
}

func columnsFor(opts Options, src Source) []string {
	if len(opts.View.Columns) > 0 {
		return opts.View.Columns
	}
	return src.Columns
}
