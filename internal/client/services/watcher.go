package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/logging"
)

type Mode int

const (
	ModeOffline Mode = iota
	ModeOnline
)

func (m Mode) String() string {
	if m == ModeOnline {
		return "online"
	}
	return "offline"
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Flusher interface {
	Flush(ctx context.Context) (FlushReport, error)
}

// Watcher tracks server reachability and drains the outbox each time the
// server becomes reachable.
type Watcher struct {
	pinger  Pinger
	flusher Flusher
	log     logging.Logger

	mu      sync.RWMutex
	mode    Mode
	checked bool
}

func NewWatcher(p Pinger, f Flusher, log logging.Logger) *Watcher {
	return &Watcher{pinger: p, flusher: f, log: log.With("module", "watcher")}
}

func (w *Watcher) Mode() Mode {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mode
}

// setMode stores m and reports whether the watcher just came online. The
// first successful check counts as a transition.
func (w *Watcher) setMode(m Mode) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	cameOnline := m == ModeOnline && (w.mode != ModeOnline || !w.checked)
	w.mode, w.checked = m, true
	return cameOnline
}

// Check pings once and flushes on an offline to online transition.
func (w *Watcher) Check(ctx context.Context) Mode {
	mode := ModeOnline
	if err := w.pinger.Ping(ctx); err != nil {
		mode = ModeOffline
	}

	prev := w.Mode()
	if w.setMode(mode) {
		w.log.Info(ctx, "server reachable, flushing outbox")
		report, err := w.flusher.Flush(ctx)
		if err != nil {
			w.log.Warn(ctx, "flush failed", "error", err, "remaining", report.Remaining)
		}
	} else if prev != mode {
		w.log.Info(ctx, "server unreachable, working offline")
	}
	return mode
}

// DefaultInterval is used by Run when it is given a non-positive interval.
const DefaultInterval = 3 * time.Second

// Run checks immediately and then every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		w.log.Warn(ctx, "non-positive check interval, using default", "interval", interval, "default", DefaultInterval)
		interval = DefaultInterval
	}
	w.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}
