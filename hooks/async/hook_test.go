package asynchook

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestWrapDeliversAsync(t *testing.T) {
	d := New(2, 16)

	var mu sync.Mutex
	var got []string
	fn := d.Wrap(func(_ context.Context, entity, key string) error {
		mu.Lock()
		got = append(got, entity+":"+key)
		mu.Unlock()
		return errors.New("ignored")
	})

	for _, k := range []string{"a", "b", "c"} {
		if err := fn(context.Background(), "Entry", k); err != nil {
			t.Fatalf("wrapped observer must not fail: %v", err)
		}
	}
	d.Close()

	if len(got) != 3 {
		t.Fatalf("expected 3 deliveries, got %v", got)
	}
}

func TestDropsWhenFull(t *testing.T) {
	d := New(1, 1)
	block := make(chan struct{})
	started := make(chan struct{})
	fn := d.Wrap(func(context.Context, string, string) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return nil
	})

	_ = fn(context.Background(), "Entry", "first")
	<-started                                       // worker busy with first
	_ = fn(context.Background(), "Entry", "queued") // fills the queue
	_ = fn(context.Background(), "Entry", "dropped")

	if n := d.Dropped(); n != 1 {
		t.Fatalf("dropped=%d want 1", n)
	}
	close(block)
	d.Close()

	_ = fn(context.Background(), "Entry", "after-close")
	if n := d.Dropped(); n != 2 {
		t.Fatalf("events after Close must be dropped, dropped=%d", n)
	}
}

func TestDetachedContext(t *testing.T) {
	d := New(1, 4)
	errc := make(chan error, 1)
	fn := d.Wrap(func(ctx context.Context, _, _ string) error {
		errc <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = fn(ctx, "Entry", "k")
	d.Close()

	if err := <-errc; err != nil {
		t.Fatalf("observer saw caller cancellation: %v", err)
	}
}

func TestPanickingObserverDoesNotKillWorker(t *testing.T) {
	d := New(1, 8)

	var mu sync.Mutex
	var got []string
	fn := d.Wrap(func(_ context.Context, _, key string) error {
		if key == "boom" {
			panic("observer bug")
		}
		mu.Lock()
		got = append(got, key)
		mu.Unlock()
		return nil
	})

	_ = fn(context.Background(), "Entry", "boom")
	_ = fn(context.Background(), "Entry", "after")
	d.Close()

	if len(got) != 1 || got[0] != "after" {
		t.Fatalf("worker stopped after panic, delivered %v", got)
	}
	if n := d.Dropped(); n != 1 {
		t.Fatalf("panic should count as dropped, dropped=%d", n)
	}
}
