// Package poll runs a task on a fixed interval until cancelled.
package poll

import (
	"context"
	"sync"
	"time"
)

// Handle controls a running poll loop.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every runs fn immediately and then every interval until the handle is
// cancelled or ctx is done. fn receives a context that is cancelled with
// the loop. Runs never overlap: a slow fn delays the next tick.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
	return h
}

// Cancel stops the loop and waits for it to exit. Safe to call more than
// once and from multiple goroutines.
func (h *Handle) Cancel() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
