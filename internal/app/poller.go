package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hostpanel/panelview/internal/panel"
	"github.com/hostpanel/panelview/internal/state"
	"github.com/hostpanel/panelview/internal/tabview"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
)

// Poller refreshes a store from a Source until its context is cancelled.
type Poller struct {
	store    *state.Store
	src      Source
	interval time.Duration
	logger   *zap.Logger

	trigger chan struct{}
	done    chan struct{}
}

// StartPoller launches a background goroutine that fetches immediately and
// then at interval, backing off while fetches keep failing. It returns
// immediately.
func StartPoller(ctx context.Context, store *state.Store, src Source, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Poller{
		store:    store,
		src:      src,
		interval: interval,
		logger:   logger.Named("poller"),
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

// Trigger requests a fetch now. Requests made while one is pending coalesce.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Done is closed once the poller goroutine has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	for {
		failures := p.refresh(ctx)
		wait := p.interval
		if failures > 0 {
			wait = calculateBackoff(failures, p.interval)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.trigger:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// refresh fetches rows and panel status concurrently and records the result.
// It returns the consecutive failure count after the update.
func (p *Poller) refresh(ctx context.Context) int {
	var (
		items  []tabview.Item
		status *panel.Status
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = p.src.Provider.Fetch(gctx)
		return err
	})
	if p.src.Status != nil {
		g.Go(func() error {
			var err error
			status, err = p.src.Status(gctx)
			return err
		})
	}

	err := g.Wait()
	if err != nil && ctx.Err() != nil {
		// Shutting down; keep the last recorded state.
		return p.store.Snapshot().ConsecutiveFailures
	}
	p.store.Update(status, items, err)

	snap := p.store.Snapshot()
	if err != nil {
		p.logger.Warn("poll failed",
			zap.String("source", p.src.Name),
			zap.Int("failures", snap.ConsecutiveFailures),
			zap.Error(err))
	} else {
		p.logger.Debug("poll ok",
			zap.String("source", p.src.Name),
			zap.Int("rows", len(items)),
			zap.Uint64("generation", snap.Generation))
	}
	return snap.ConsecutiveFailures
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff. A base above maxBackoff is never shortened.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	limit := max(maxBackoff, base)
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= limit {
			return limit
		}
	}
	return backoff
}
