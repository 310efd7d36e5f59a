package relay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mikanbox/relay/internal/eventbus"
	"github.com/mikanbox/relay/internal/logging"
	"github.com/mikanbox/relay/pkg/domain"
)

// HubOptions represents hub configuration options
type HubOptions struct {
	Logger      *logging.Logger
	EventBus    eventbus.Bus
	SendTimeout time.Duration
}

// Hub wires the registry, the room directory and the router together and
// executes delivery instructions. It owns both shared structures; nothing
// else mutates them.
type Hub struct {
	registry *Registry
	rooms    *Rooms
	router   *Router

	logger      *logging.Logger
	eventBus    eventbus.Bus
	sendTimeout time.Duration

	mu      sync.Mutex
	stopped bool

	// Statistics
	messagesRouted   int64
	eventsDelivered  int64
	deliveriesMissed int64
	startTime        time.Time
}

// HubStats provides statistics about the hub
type HubStats struct {
	Connections      int     `json:"connections"`
	Rooms            int     `json:"rooms"`
	MessagesRouted   int64   `json:"messages_routed"`
	EventsDelivered  int64   `json:"events_delivered"`
	DeliveriesMissed int64   `json:"deliveries_missed"`
	Uptime           float64 `json:"uptime_seconds"`
}

// NewHub creates a new hub
func NewHub(opts HubOptions) *Hub {
	if opts.Logger == nil {
		opts.Logger = logging.New(logging.Config{Level: "info", Format: "text"})
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 5 * time.Second
	}

	registry := NewRegistry()
	rooms := NewRooms()

	return &Hub{
		registry:    registry,
		rooms:       rooms,
		router:      NewRouter(registry, rooms, opts.Logger),
		logger:      opts.Logger,
		eventBus:    opts.EventBus,
		sendTimeout: opts.SendTimeout,
		startTime:   time.Now(),
	}
}

// Registry returns the hub's connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Rooms returns the hub's room directory.
func (h *Hub) Rooms() *Rooms {
	return h.rooms
}

// Register adds a connection to the registry. A duplicate id is fatal to
// this registration only: it is logged and rejected, and the existing
// entry is untouched.
func (h *Hub) Register(conn domain.Conn) error {
	// The stopped check and the registry insert stay under one lock so a
	// registration cannot slip in between Stop flagging the hub and Stop
	// draining the registry.
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return domain.ErrHubStopped
	}
	err := h.registry.Register(conn)
	h.mu.Unlock()

	if err != nil {
		h.logger.Error("connection rejected",
			"conn_id", conn.ID(),
			"error", err,
		)
		return err
	}

	h.logger.Info("connection registered",
		"conn_id", conn.ID(),
		"total_connections", h.registry.Len(),
	)

	h.publish(eventbus.NewEvent(eventbus.EventClientConnected, "hub", conn.ID()).
		WithMetadata("conn_id", conn.ID()))

	return nil
}

// Unregister runs the disconnect cleanup sequence for a connection id:
// room membership is dropped first, then the registry entry, so no room
// ever holds an id whose connection handle is already gone. Idempotent
// against duplicate disconnect signals.
func (h *Hub) Unregister(id string) {
	left := h.rooms.LeaveAll(id)

	conn, ok := h.registry.Unregister(id)
	if !ok {
		// Already cleaned up by an earlier signal.
		return
	}

	if err := conn.Close(); err != nil {
		h.logger.Debug("error closing connection", "conn_id", id, "error", err)
	}

	for _, room := range left {
		h.publish(eventbus.NewEvent(eventbus.EventRoomLeft, "hub", id).
			WithMetadata("conn_id", id).
			WithMetadata("room", room))
	}

	h.logger.Info("connection unregistered",
		"conn_id", id,
		"rooms_left", len(left),
		"total_connections", h.registry.Len(),
	)

	h.publish(eventbus.NewEvent(eventbus.EventClientDisconnected, "hub", id).
		WithMetadata("conn_id", id))
}

// Route dispatches one inbound event from senderID and executes the
// resulting delivery instructions. A target that vanished between dispatch
// and send is skipped; a write failure to one target never aborts delivery
// to the remaining targets.
func (h *Hub) Route(ctx context.Context, senderID string, event domain.InboundEvent) {
	deliveries := h.router.Dispatch(senderID, event)
	atomic.AddInt64(&h.messagesRouted, 1)

	for _, d := range deliveries {
		conn, ok := h.registry.Lookup(d.TargetID)
		if !ok {
			// Expected under concurrent disconnect.
			atomic.AddInt64(&h.deliveriesMissed, 1)
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, h.sendTimeout)
		err := conn.Send(sendCtx, d.Event)
		cancel()

		if err != nil {
			atomic.AddInt64(&h.deliveriesMissed, 1)
			h.logger.Warn("delivery failed",
				"target_id", d.TargetID,
				"event", d.Event.EventName(),
				"error", err,
			)
			continue
		}

		atomic.AddInt64(&h.eventsDelivered, 1)
	}

	h.publishRouted(senderID, event)
}

// publishRouted emits the bus event describing one routed inbound event.
func (h *Hub) publishRouted(senderID string, event domain.InboundEvent) {
	if h.eventBus == nil {
		return
	}

	switch e := event.(type) {
	case domain.SendMessage:
		ev := eventbus.NewEvent(eventbus.EventMessageRelayed, "hub", e.Text).
			WithMetadata("sender_id", senderID).
			WithMetadata("kind", "broadcast")
		if e.RecipientID != "" {
			ev.WithMetadata("recipient_id", e.RecipientID)
		}
		h.eventBus.PublishAsync(ev)
	case domain.JoinRoom:
		h.eventBus.PublishAsync(eventbus.NewEvent(eventbus.EventRoomJoined, "hub", senderID).
			WithMetadata("conn_id", senderID).
			WithMetadata("room", e.Room))
	case domain.RoomMessage:
		h.eventBus.PublishAsync(eventbus.NewEvent(eventbus.EventMessageRelayed, "hub", e.Text).
			WithMetadata("sender_id", senderID).
			WithMetadata("kind", "room").
			WithMetadata("room", e.Room))
	}
}

func (h *Hub) publish(event *eventbus.Event) {
	if h.eventBus == nil {
		return
	}
	h.eventBus.PublishAsync(event)
}

// Stop closes every registered connection and rejects further
// registrations.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	h.logger.Info("stopping hub")

	for _, conn := range h.registry.All() {
		h.Unregister(conn.ID())
	}

	h.logger.Info("hub stopped")
}

// Stats returns hub statistics
func (h *Hub) Stats() HubStats {
	return HubStats{
		Connections:      h.registry.Len(),
		Rooms:            h.rooms.Count(),
		MessagesRouted:   atomic.LoadInt64(&h.messagesRouted),
		EventsDelivered:  atomic.LoadInt64(&h.eventsDelivered),
		DeliveriesMissed: atomic.LoadInt64(&h.deliveriesMissed),
		Uptime:           time.Since(h.startTime).Seconds(),
	}
}
