package gateway

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Applier receives resolved parameter batches. Satisfied by kinematics.Store.
type Applier interface {
	ApplyUpdate(values map[string]float64) []string
}

// AppliedListener is notified after each batch lands in the store with the
// names that were actually applied.
type AppliedListener func(applied []string)

// Gateway consumes batches from a Transport, coalesces bursts within the
// debounce window (last write wins per name), and applies the merged batch
// to the store in a single call. Listeners observe the applied names after
// each store update.
type Gateway struct {
	transport Transport
	applier   Applier
	debounce  time.Duration
	log       *zap.Logger

	mu        sync.Mutex
	listeners []AppliedListener

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a gateway. A zero debounce applies every batch immediately.
func New(transport Transport, applier Applier, debounce time.Duration, log *zap.Logger) *Gateway {
	return &Gateway{
		transport: transport,
		applier:   applier,
		debounce:  debounce,
		log:       log,
	}
}

// OnApplied registers a listener. Listeners run synchronously on the gateway
// goroutine, in registration order.
func (g *Gateway) OnApplied(fn AppliedListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Run starts the transport and processes batches until the context is
// cancelled or the transport channel closes. It returns the transport's
// startup error, if any; otherwise nil.
func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.done = make(chan struct{})
	defer close(g.done)
	defer cancel()

	batches, err := g.transport.Watch(ctx)
	if err != nil {
		return err
	}

	var (
		pending Batch
		timer   *time.Timer
		fire    <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			fire = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			if len(pending) > 0 {
				g.apply(pending)
			}
			return nil
		case batch, ok := <-batches:
			if !ok {
				stopTimer()
				if len(pending) > 0 {
					g.apply(pending)
				}
				return nil
			}
			if g.debounce <= 0 {
				g.apply(batch)
				continue
			}
			if pending == nil {
				pending = make(Batch, len(batch))
			}
			for name, value := range batch {
				pending[name] = value
			}
			if timer == nil {
				timer = time.NewTimer(g.debounce)
				fire = timer.C
			}
		case <-fire:
			timer = nil
			fire = nil
			g.apply(pending)
			pending = nil
		}
	}
}

func (g *Gateway) apply(batch Batch) {
	applied := g.applier.ApplyUpdate(batch)
	if len(applied) == 0 {
		g.log.Debug("batch produced no limit changes", zap.Int("size", len(batch)))
		return
	}
	g.log.Info("limits updated", zap.Strings("params", applied))

	g.mu.Lock()
	listeners := make([]AppliedListener, len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()
	for _, fn := range listeners {
		fn(applied)
	}
}

// Stop cancels the run loop and waits for it to drain, then closes the
// transport. Safe to call once after Run has started.
func (g *Gateway) Stop() error {
	if g.cancel != nil {
		g.cancel()
	}
	if g.done != nil {
		<-g.done
	}
	return g.transport.Close()
}
