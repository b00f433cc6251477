package events

import (
	"context"
	"sync"
)

// Emitter delivers turn events over a channel in emission order.
// It guarantees exactly one StartEvent and exactly one EndEvent per turn,
// and stops delivering once the consumer's context is cancelled.
type Emitter struct {
	ctx context.Context
	ch  chan Event

	mu      sync.Mutex
	started bool
	ended   bool
}

// NewEmitter creates an emitter bound to the consumer's context.
func NewEmitter(ctx context.Context, buffer int) *Emitter {
	return &Emitter{
		ctx: ctx,
		ch:  make(chan Event, buffer),
	}
}

// Events returns the ordered event stream. The channel is closed after the
// EndEvent is delivered (or the context is cancelled).
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Start emits the StartEvent. Repeated calls are no-ops.
func (e *Emitter) Start() {
	e.mu.Lock()
	if e.started || e.ended {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	e.send(StartEvent{})
}

// Emit delivers an intermediate event. Events emitted before Start or after
// End are dropped, as are events after cancellation.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	ok := e.started && !e.ended
	e.mu.Unlock()
	if !ok {
		return
	}

	e.send(ev)
}

// End emits the terminal EndEvent (with err on failure) and closes the
// stream. Repeated calls are no-ops.
func (e *Emitter) End(err error) {
	e.mu.Lock()
	if e.ended {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.ended = true
	e.mu.Unlock()

	e.send(EndEvent{Err: err})
	close(e.ch)
}

func (e *Emitter) send(ev Event) {
	select {
	case e.ch <- ev:
	case <-e.ctx.Done():
	}
}
