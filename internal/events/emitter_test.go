package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func drain(e *Emitter) []Event {
	var out []Event
	for ev := range e.Events() {
		out = append(out, ev)
	}
	return out
}

func TestEmitterOrdersEvents(t *testing.T) {
	e := NewEmitter(context.Background(), 16)

	e.Start()
	e.Emit(ChunkEvent{Text: "a"})
	e.Emit(ChunkEvent{Text: "b"})
	e.End(nil)

	got := drain(e)
	if len(got) != 4 {
		t.Fatalf("expected 4 events, got %d", len(got))
	}
	if _, ok := got[0].(StartEvent); !ok {
		t.Errorf("expected StartEvent first, got %T", got[0])
	}
	if c, ok := got[1].(ChunkEvent); !ok || c.Text != "a" {
		t.Errorf("expected chunk a, got %#v", got[1])
	}
	if _, ok := got[3].(EndEvent); !ok {
		t.Errorf("expected EndEvent last, got %T", got[3])
	}
}

func TestEmitterStartIsIdempotent(t *testing.T) {
	e := NewEmitter(context.Background(), 16)

	e.Start()
	e.Start()
	e.End(nil)

	got := drain(e)
	if len(got) != 2 {
		t.Fatalf("expected exactly one start and one end, got %d events", len(got))
	}
}

func TestEmitterEndIsIdempotent(t *testing.T) {
	e := NewEmitter(context.Background(), 16)

	e.Start()
	e.End(nil)
	e.End(errors.New("late"))

	got := drain(e)
	end, ok := got[len(got)-1].(EndEvent)
	if !ok {
		t.Fatalf("expected EndEvent last, got %T", got[len(got)-1])
	}
	if end.Err != nil {
		t.Errorf("second End must be a no-op, got err %v", end.Err)
	}
}

func TestEmitterDropsEventsBeforeStart(t *testing.T) {
	e := NewEmitter(context.Background(), 16)

	e.Emit(ChunkEvent{Text: "early"})
	e.Start()
	e.End(nil)

	got := drain(e)
	if len(got) != 2 {
		t.Fatalf("pre-start events must be dropped, got %d events", len(got))
	}
}

func TestEmitterEndCarriesError(t *testing.T) {
	e := NewEmitter(context.Background(), 16)
	turnErr := errors.New("provider down")

	e.Start()
	e.End(turnErr)

	got := drain(e)
	end := got[len(got)-1].(EndEvent)
	if !errors.Is(end.Err, turnErr) {
		t.Errorf("expected turn error on EndEvent, got %v", end.Err)
	}
}

func TestEmitterDoesNotBlockAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := NewEmitter(ctx, 0) // unbuffered: sends block without a reader

	cancel()

	done := make(chan struct{})
	go func() {
		e.Start()
		e.Emit(ChunkEvent{Text: "x"})
		e.End(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emitter blocked after consumer cancellation")
	}
}
