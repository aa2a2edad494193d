// Package pixelbus hands pixel commands from the network intake paths to the
// drive loop.
//
// The bus is a single slot with latest-wins semantics: a newly sent command
// unconditionally replaces any command not yet consumed. The drive loop only
// ever needs the most recent desired strip state, and the slot's capacity of
// one makes unbounded buildup from bursty producers structurally impossible.
// Commands that arrive faster than the strip's refresh rate are superseded
// before they are observed; that is the intended backpressure policy, not a
// loss bug.
package pixelbus

import (
	"errors"
	"sync"

	"github.com/TuteMthCD/nightstand/internal/command"
)

// ErrClosed is returned by Send and Receive after the bus is torn down.
var ErrClosed = errors.New("pixelbus: bus is closed")

// Bus is the hand-off slot. Any number of goroutines may Send; exactly one
// consumer calls Receive.
type Bus struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending *command.Command
	closed  bool
}

// New creates an empty bus.
func New() *Bus {
	b := &Bus{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Send places cmd in the slot, superseding any pending command. It never
// blocks waiting for the consumer.
func (b *Bus) Send(cmd command.Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.pending = &cmd
	b.cond.Signal()
	return nil
}

// Receive blocks until a command is available or the bus is closed. There is
// no timeout: the consumer is expected to run for the process lifetime.
func (b *Bus) Receive() (command.Command, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.pending == nil && !b.closed {
		b.cond.Wait()
	}
	if b.pending == nil {
		return nil, ErrClosed
	}
	cmd := *b.pending
	b.pending = nil
	return cmd, nil
}

// Close tears the bus down. Subsequent Sends fail with ErrClosed; a pending
// command is still delivered to the consumer, after which Receive fails with
// ErrClosed too.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}
