package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitRecoversPanickingHandler(t *testing.T) {
	bus := NewEventBus()
	defer bus.Stop()

	ran := make(chan struct{})
	bus.Subscribe(EventStatusUpdate, "panics", func(ctx context.Context, e Event) error {
		panic("handler blew up")
	})
	bus.Subscribe(EventStatusUpdate, "runs", func(ctx context.Context, e Event) error {
		close(ran)
		return nil
	})

	bus.Emit(context.Background(), Event{Type: EventStatusUpdate, Source: "test"})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler never ran after sibling panicked")
	}
}

func TestEmitSyncReturnsFirstHandlerError(t *testing.T) {
	bus := NewEventBus()
	defer bus.Stop()

	wantErr := errors.New("handler failed")
	bus.Subscribe(EventServerDown, "ok", func(ctx context.Context, e Event) error {
		return nil
	})
	bus.Subscribe(EventServerDown, "fails", func(ctx context.Context, e Event) error {
		return wantErr
	})

	err := bus.EmitSync(context.Background(), Event{Type: EventServerDown, Source: "test"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("EmitSync() error = %v, want %v", err, wantErr)
	}
}

func TestEmitSyncRecoversPanickingHandler(t *testing.T) {
	bus := NewEventBus()
	defer bus.Stop()

	bus.Subscribe(EventServerRecovered, "panics", func(ctx context.Context, e Event) error {
		panic("handler blew up")
	})

	// A recovered panic is logged, not surfaced as an error.
	if err := bus.EmitSync(context.Background(), Event{Type: EventServerRecovered, Source: "test"}); err != nil {
		t.Fatalf("EmitSync() error = %v, want nil", err)
	}
}

func TestHandlerCount(t *testing.T) {
	bus := NewEventBus()
	defer bus.Stop()

	if got := bus.HandlerCount(EventShutdown); got != 0 {
		t.Fatalf("HandlerCount() = %d, want 0", got)
	}

	bus.Subscribe(EventShutdown, "a", func(ctx context.Context, e Event) error { return nil })
	bus.Subscribe(EventShutdown, "b", func(ctx context.Context, e Event) error { return nil })

	if got := bus.HandlerCount(EventShutdown); got != 2 {
		t.Fatalf("HandlerCount() = %d, want 2", got)
	}
}
