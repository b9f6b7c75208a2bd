package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hostpanel/panelview/internal/render"
	"github.com/hostpanel/panelview/internal/state"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTML surface until ctx is cancelled. It logs to stderr.
func Serve(ctx context.Context, opts Options) error {
	s, err := open(opts, false)
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	addr := opts.Listen
	if addr == "" {
		addr = s.cfg.Listen
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.serveOn(ctx, ln, opts)
}

// serveOn serves on ln, which it closes on return.
func (s *session) serveOn(ctx context.Context, ln net.Listener, opts Options) error {
	html, err := render.NewHTMLRenderer()
	if err != nil {
		_ = ln.Close()
		return err
	}

	store := &state.Store{}
	_, stop := s.startFeed(ctx, store, opts)
	defer stop()

	handler := render.NewHandler(s.ctrl, store, html, render.HandlerOptions{
		Title:   s.src.Title,
		Columns: columnsFor(opts, s.src),
		Logger:  s.logger,
	})

	srv := &http.Server{
		Handler:           newMux(handler, store),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("serving", zap.String("addr", ln.Addr().String()), zap.String("source", s.src.Name))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newMux mounts the table handler at / and a health probe that reports the
// poller's last result.
func newMux(table http.Handler, store *state.Store) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", table)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		switch {
		case snap.LastError != nil:
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "error: %v\n", snap.LastError)
		case snap.Generation == 0:
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "loading")
		default:
			fmt.Fprintf(w, "ok generation=%d rows=%d\n", snap.Generation, len(snap.Items))
		}
	})
	return mux
}
