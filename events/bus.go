package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler reacts to one event. Returned errors are logged, never propagated to the publisher.
type Handler func(ctx context.Context, e Event) error

// Publisher is what services depend on to announce committed changes.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type subscription struct {
	name    string
	handler Handler
	types   map[Type]bool
}

func (s subscription) wants(t Type) bool {
	return len(s.types) == 0 || s.types[t]
}

// Bus fans events out to subscribers, each in its own goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
	wg   sync.WaitGroup
	log  *zap.Logger
	now  func() time.Time
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{log: log, now: time.Now}
}

// Subscribe registers h for the given types, or for every type when none is given.
func (b *Bus) Subscribe(name string, h Handler, types ...Type) {
	set := make(map[Type]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	b.mu.Lock()
	b.subs = append(b.subs, subscription{name: name, handler: h, types: set})
	b.mu.Unlock()
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = b.now().UTC()
	}

	b.mu.RLock()
	subs := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.wants(e.Type) {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	// Handlers outlive the request that published the event.
	detached := context.WithoutCancel(ctx)
	for _, s := range subs {
		b.wg.Add(1)
		go b.dispatch(detached, s, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, s subscription, e Event) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("subscriber", s.name),
				zap.String("event_type", string(e.Type)),
				zap.String("event_id", e.ID),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	if err := s.handler(ctx, e); err != nil {
		b.log.Error("event handler failed",
			zap.String("subscriber", s.name),
			zap.String("event_type", string(e.Type)),
			zap.String("event_id", e.ID),
			zap.Error(err),
		)
	}
}

// Wait blocks until every dispatched handler has returned.
func (b *Bus) Wait() {
	b.wg.Wait()
}
