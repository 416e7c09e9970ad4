// Package asynchook moves miss observers off the read path.
//
// usage:
//
//	dispatch := asynchook.New(2, 1000) // 2 workers; queue 1000 events
//	defer dispatch.Close()
//
//	eng, _ := docache.New[docache.Doc](docache.Options[docache.Doc]{
//	    Entity:      "Entry",
//	    Provider:    provider,
//	    Store:       store,
//	    OnCacheMiss: dispatch.Wrap(slogHooks.CacheMiss),
//	    OnDataMiss:  dispatch.Wrap(slogHooks.DataMiss),
//	})
//
// Events are dropped when the queue is full; Dropped reports how many.
package asynchook

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/docache"
)

type Dispatcher struct {
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

func New(workers, qlen int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	d := &Dispatcher{q: make(chan func(), qlen)}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer d.wg.Done()
			for f := range d.q {
				d.run(f)
			}
		}()
	}
	return d
}

// Wrap returns a MissFunc that enqueues fn and returns immediately.
// fn runs with a context detached from the caller's cancellation.
func (d *Dispatcher) Wrap(fn docache.MissFunc) docache.MissFunc {
	return func(ctx context.Context, entity, key string) error {
		bg := context.WithoutCancel(ctx)
		d.try(func() { _ = fn(bg, entity, key) })
		return nil
	}
}

// Close drains queued events and stops the workers.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.q)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// run calls f; a panicking observer counts as dropped.
func (d *Dispatcher) run(f func()) {
	defer func() {
		if recover() != nil {
			d.dropped.Add(1)
		}
	}()
	f()
}

func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

func (d *Dispatcher) try(f func()) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return
	}
	select {
	case d.q <- f:
	default: // drop
		d.dropped.Add(1)
	}
}
