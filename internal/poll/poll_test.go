package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEvery_RunsImmediatelyAndRepeats(t *testing.T) {
	var runs atomic.Int32
	h := Every(context.Background(), 5*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	defer h.Cancel()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d runs", runs.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestCancel_StopsAndIsIdempotent(t *testing.T) {
	var runs atomic.Int32
	h := Every(context.Background(), time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	h.Cancel()
	h.Cancel()

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	if got := runs.Load(); got != after {
		t.Errorf("ran %d more times after Cancel", got-after)
	}
	select {
	case <-h.Done():
	default:
		t.Error("Done not closed after Cancel")
	}
}

func TestCancel_AbortsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	h := Every(context.Background(), time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	})

	<-started
	h.Cancel()
}

func TestEvery_ParentContextStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := Every(ctx, time.Millisecond, func(context.Context) {})

	cancel()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on parent cancellation")
	}
}

func TestEvery_LongIntervalOnlyRunsOnce(t *testing.T) {
	var runs atomic.Int32
	h := Every(context.Background(), time.Hour, func(context.Context) { runs.Add(1) })
	time.Sleep(10 * time.Millisecond)
	h.Cancel()

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}
