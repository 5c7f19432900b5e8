// Package events delivers analysis and medication events to in-process
// subscribers registered at start-up.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

// Handler receives one event. Handlers run synchronously on the publisher's
// goroutine and must not block.
type Handler func(ctx context.Context, e analysis.Event)

// Bus is a topic-keyed observer registry. All operations are safe for
// concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler // kind -> handlers
	wildcard []Handler
	log      zerolog.Logger
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{handlers: make(map[string][]Handler), log: log}
}

// Subscribe registers h for the given kinds, or for every kind when none
// are given.
func (b *Bus) Subscribe(h Handler, kinds ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(kinds) == 0 {
		b.wildcard = append(b.wildcard, h)
		return
	}
	for _, k := range kinds {
		b.handlers[k] = append(b.handlers[k], h)
	}
}

// Publish implements analysis.Publisher. A panicking handler is logged and
// does not stop delivery to the others.
func (b *Bus) Publish(ctx context.Context, e analysis.Event) {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.handlers[e.Kind])+len(b.wildcard))
	targets = append(targets, b.handlers[e.Kind]...)
	targets = append(targets, b.wildcard...)
	b.mu.RUnlock()

	for _, h := range targets {
		b.deliver(ctx, h, e)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, e analysis.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("kind", e.Kind).Msg("event handler panicked")
		}
	}()
	h(ctx, e)
}
