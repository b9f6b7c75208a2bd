package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hostpanel/panelview/internal/panel"
	"github.com/hostpanel/panelview/internal/state"
	"github.com/hostpanel/panelview/internal/tabview"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"seven failures", 7, 256 * time.Second},
		{"eight failures capped", 8, 5 * time.Minute}, // Would be 512s, capped to 5m
		{"many failures capped", 100, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 70; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff || got <= 0 {
			t.Errorf("calculateBackoff(%d, %v) = %v, outside (0, %v]", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestCalculateBackoff_GrowsFromPollInterval(t *testing.T) {
	for _, base := range []time.Duration{defaultPollInterval, time.Minute, 10 * time.Minute} {
		prev := calculateBackoff(0, base)
		assert.Equal(t, base, prev)
		for failures := 1; failures <= 10; failures++ {
			got := calculateBackoff(failures, base)
			assert.GreaterOrEqualf(t, got, base, "base %v failures %d", base, failures)
			assert.GreaterOrEqualf(t, got, prev, "base %v failures %d", base, failures)
			prev = got
		}
	}

	assert.Equal(t, 60*time.Second, calculateBackoff(1, defaultPollInterval))
	assert.Equal(t, 120*time.Second, calculateBackoff(2, defaultPollInterval))
	assert.Equal(t, 5*time.Minute, calculateBackoff(4, defaultPollInterval))
	assert.Equal(t, 10*time.Minute, calculateBackoff(3, 10*time.Minute))
}

// scriptedSource serves rows until fail is set.
type scriptedSource struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (s *scriptedSource) source(withStatus bool) Source {
	src := Source{
		Name: "test",
		Provider: tabview.ProviderFunc(func(ctx context.Context) ([]tabview.Item, error) {
			n := s.calls.Add(1)
			if s.fail.Load() {
				return nil, errors.New("panel unreachable")
			}
			return []tabview.Item{tabview.NewRecord(fmt.Sprint(n), map[string]any{"call": int(n)})}, nil
		}),
	}
	if withStatus {
		src.Status = func(ctx context.Context) (*panel.Status, error) {
			return &panel.Status{Kind: panel.KindUAPI, User: "bob", Domain: "example.com"}, nil
		}
	}
	return src
}

func TestPollerFetchesTriggersAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scripted := &scriptedSource{}
	store := &state.Store{}
	p := StartPoller(ctx, store, scripted.source(true), time.Hour, nil)

	require.Eventually(t, func() bool { return store.Generation() == 1 }, time.Second, 5*time.Millisecond)
	snap := store.Snapshot()
	assert.True(t, snap.HasStatus)
	assert.Equal(t, "bob@example.com", snap.Status.Label())

	p.Trigger()
	require.Eventually(t, func() bool { return store.Generation() == 2 }, time.Second, 5*time.Millisecond)

	scripted.fail.Store(true)
	p.Trigger()
	require.Eventually(t, func() bool { return store.Snapshot().ConsecutiveFailures == 1 }, time.Second, 5*time.Millisecond)
	snap = store.Snapshot()
	assert.EqualError(t, snap.LastError, "panel unreachable")
	assert.Equal(t, uint64(2), snap.Generation)
	require.Len(t, snap.Items, 1, "last-good rows survive a failed poll")
	assert.Equal(t, "2", snap.Items[0].Identity())

	cancel()
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPollerStatusFailureFailsUpdate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := (&scriptedSource{}).source(false)
	src.Status = func(ctx context.Context) (*panel.Status, error) {
		return nil, panel.ErrUnauthorized
	}
	store := &state.Store{}
	p := StartPoller(ctx, store, src, time.Hour, nil)

	require.Eventually(t, func() bool { return store.Snapshot().LastError != nil }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, store.Snapshot().LastError, panel.ErrUnauthorized)
	assert.Equal(t, uint64(0), store.Generation())

	cancel()
	<-p.Done()
}

func TestTriggerCoalesces(t *testing.T) {
	p := &Poller{trigger: make(chan struct{}, 1)}
	p.Trigger()
	p.Trigger()
	p.Trigger()
	assert.Len(t, p.trigger, 1)
}
