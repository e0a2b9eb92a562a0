package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	"go.uber.org/zap"
)

// EventHandler reacts to published events
type EventHandler interface {
	Handle(event entities.Event) error
	CanHandle(eventType string) bool
}

// Publisher is what services depend on to emit events
type Publisher interface {
	Publish(ctx context.Context, event entities.Event) error
}

// Bus journals events and fans them out to subscribers on a single
// dispatch goroutine. Notifications are dropped, and logged, when the
// queue is full; the journal write is never dropped.
type Bus struct {
	journal repositories.EventJournal
	clock   clock.Clock
	log     *zap.Logger

	mu          sync.RWMutex
	subscribers map[string][]EventHandler
	closed      bool

	queue chan entities.Event
	done  chan struct{}
}

// NewBus starts a bus writing to journal
func NewBus(journal repositories.EventJournal, clk clock.Clock, log *zap.Logger, queueSize int) *Bus {
	b := &Bus{
		journal:     journal,
		clock:       clk,
		log:         log,
		subscribers: make(map[string][]EventHandler),
		queue:       make(chan entities.Event, queueSize),
		done:        make(chan struct{}),
	}
	go b.dispatch()
	return b
}

var _ Publisher = (*Bus)(nil)

// Publish stamps, journals and enqueues an event
func (b *Bus) Publish(ctx context.Context, event entities.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = b.clock.Now().UTC()
	}

	if err := b.journal.Append(ctx, event); err != nil {
		return fmt.Errorf("journal event %s: %w", event.Type, err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	select {
	case b.queue <- event:
	default:
		b.log.Warn("Event queue full, dropping notification",
			zap.String("event_type", event.Type),
			zap.String("company_id", string(event.CompanyID)))
	}
	return nil
}

// Subscribe registers handler for eventTypes. AllEvents matches everything.
func (b *Bus) Subscribe(eventTypes []string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], handler)
	}
}

// Unsubscribe removes handler from every event type
func (b *Bus) Unsubscribe(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, handlers := range b.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		b.subscribers[eventType] = kept
	}
}

// Close stops accepting notifications and waits for queued ones to be delivered
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	<-b.done
}

func (b *Bus) dispatch() {
	defer close(b.done)

	for event := range b.queue {
		b.mu.RLock()
		handlers := append(append([]EventHandler(nil), b.subscribers[event.Type]...), b.subscribers[AllEvents]...)
		b.mu.RUnlock()

		for _, h := range handlers {
			if !h.CanHandle(event.Type) {
				continue
			}
			if err := h.Handle(event); err != nil {
				b.log.Error("Error handling event",
					zap.String("event_type", event.Type),
					zap.String("event_id", event.ID),
					zap.Error(err))
			}
		}
	}
}
