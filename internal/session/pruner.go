// Package session runs the background sweep of expired session records.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskpilot/internal/store"
)

// pruneTimeout bounds a single sweep against a slow store.
const pruneTimeout = 10 * time.Second

// Pruner removes expired sessions on a fixed interval. It only ever
// deletes session bookkeeping rows, never task data.
type Pruner struct {
	store    store.Store
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

// NewPruner creates a pruner sweeping at the given interval.
func NewPruner(s store.Store, interval time.Duration, log *zap.Logger) *Pruner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pruner{
		store:    s,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep goroutine. Calling Start twice is a no-op.
func (p *Pruner) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()
}

// Stop halts the sweep goroutine.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

func (p *Pruner) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *Pruner) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	n, err := p.store.PruneSessions(ctx, time.Now().UTC())
	if err != nil {
		p.log.Warn("session prune failed", zap.Error(err))
		return
	}
	if n > 0 {
		p.log.Debug("pruned expired sessions", zap.Int("count", n))
	}
}
