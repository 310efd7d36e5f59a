package eventbus

import (
	"context"
	"sync"

	"github.com/rs/xid"
)

// Handler receives a published event.
type Handler func(event *Event)

// Bus fans events out to subscribers.
type Bus interface {
	// Publish delivers an event to matching subscribers, synchronously
	Publish(event *Event)

	// PublishAsync queues an event for background delivery
	PublishAsync(event *Event)

	// Subscribe registers a handler for one event type and returns its subscription id
	Subscribe(eventType EventType, handler Handler) string

	// SubscribeAll registers a handler for every event type
	SubscribeAll(handler Handler) string

	// Unsubscribe removes a subscription by id
	Unsubscribe(id string)

	// Start launches the background delivery loop
	Start(ctx context.Context)

	// Stop ends background delivery
	Stop()
}

const wildcard = EventType("*")

// InMemoryBus is a process-local Bus. Handlers run on the publisher's
// goroutine for Publish and on the bus goroutine for PublishAsync.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[string]Handler
	types    map[string]EventType

	queue  chan *Event
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewInMemoryBus returns a bus whose async queue holds up to bufferSize
// events. Async events beyond that are dropped, never blocking a publisher.
func NewInMemoryBus(bufferSize int) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[EventType]map[string]Handler),
		types:    make(map[string]EventType),
		queue:    make(chan *Event, bufferSize),
	}
}

// Publish delivers an event to subscribers of its type and to wildcard
// subscribers.
func (b *InMemoryBus) Publish(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, h := range b.handlers[event.Type] {
		h(event)
	}
	for _, h := range b.handlers[wildcard] {
		h(event)
	}
}

// PublishAsync queues an event for delivery on the bus goroutine.
func (b *InMemoryBus) PublishAsync(event *Event) {
	select {
	case b.queue <- event:
	default:
	}
}

// Subscribe registers a handler for events of the given type.
func (b *InMemoryBus) Subscribe(eventType EventType, handler Handler) string {
	return b.add(eventType, handler)
}

// SubscribeAll registers a handler for every event type.
func (b *InMemoryBus) SubscribeAll(handler Handler) string {
	return b.add(wildcard, handler)
}

func (b *InMemoryBus) add(eventType EventType, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := xid.New().String()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]Handler)
	}
	b.handlers[eventType][id] = handler
	b.types[id] = eventType
	return id
}

// Unsubscribe removes the subscription with the given id. Unknown ids are
// ignored.
func (b *InMemoryBus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	eventType, ok := b.types[id]
	if !ok {
		return
	}
	delete(b.handlers[eventType], id)
	delete(b.types, id)
}

// Start launches the async delivery goroutine.
func (b *InMemoryBus) Start(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)
	b.wg.Add(1)
	go b.deliver(ctx)
}

// Stop ends async delivery. Events still queued are discarded.
func (b *InMemoryBus) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
}

func (b *InMemoryBus) deliver(ctx context.Context) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.queue:
			if event != nil {
				b.Publish(event)
			}
		}
	}
}
