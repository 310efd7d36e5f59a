package relay

import (
	"fmt"

	"github.com/mikanbox/relay/internal/logging"
	"github.com/mikanbox/relay/pkg/domain"
)

// Delivery is one routing instruction: deliver Event to the connection
// identified by TargetID.
type Delivery struct {
	TargetID string
	Event    domain.OutboundEvent
}

// Router is the dispatch core. Given a sender id and a decoded inbound
// event it produces the delivery instructions for that event. The router
// holds no per-connection state of its own; everything lives in the
// registry and the room directory it reads.
type Router struct {
	registry *Registry
	rooms    *Rooms
	logger   *logging.Logger
}

// NewRouter creates a router over the given registry and room directory.
func NewRouter(registry *Registry, rooms *Rooms, logger *logging.Logger) *Router {
	return &Router{
		registry: registry,
		rooms:    rooms,
		logger:   logger,
	}
}

// Dispatch maps one inbound event to its delivery instructions.
// Self-targeted effects are emitted before fan-out effects. Addressing
// misses (unknown recipient, unknown room) are silent: delivery is best
// effort and never reported back to the sender.
func (r *Router) Dispatch(senderID string, event domain.InboundEvent) []Delivery {
	switch e := event.(type) {
	case domain.SendMessage:
		return r.dispatchMessage(senderID, e)
	case domain.JoinRoom:
		return r.dispatchJoin(senderID, e)
	case domain.RoomMessage:
		return r.dispatchRoomMessage(senderID, e)
	default:
		r.logger.Warn("unhandled inbound event", "event", event.EventName(), "sender_id", senderID)
		return nil
	}
}

func (r *Router) dispatchMessage(senderID string, e domain.SendMessage) []Delivery {
	deliveries := []Delivery{
		{TargetID: senderID, Event: domain.SelfEcho{Text: e.Text}},
	}

	// The sender receives the broadcast copy too; its own confirmation is
	// the distinct self-echo above.
	broadcast := domain.Broadcast{Text: e.Text, SenderID: senderID}
	for _, conn := range r.registry.All() {
		deliveries = append(deliveries, Delivery{TargetID: conn.ID(), Event: broadcast})
	}

	if e.RecipientID != "" {
		if _, ok := r.registry.Lookup(e.RecipientID); ok {
			deliveries = append(deliveries, Delivery{
				TargetID: e.RecipientID,
				Event:    domain.Private{Text: e.Text, SenderID: senderID},
			})
		} else {
			r.logger.Debug("private recipient unreachable, dropping",
				"sender_id", senderID,
				"recipient_id", e.RecipientID,
			)
		}
	}

	return deliveries
}

func (r *Router) dispatchJoin(senderID string, e domain.JoinRoom) []Delivery {
	r.rooms.Join(e.Room, senderID)

	// The notice goes out after the join, so the sender sees its own join
	// confirmation through the same channel as every other member.
	notice := domain.RoomNotice{
		Room: e.Room,
		Text: fmt.Sprintf("%s joined the room", senderID),
	}

	var deliveries []Delivery
	for _, id := range r.rooms.Members(e.Room) {
		deliveries = append(deliveries, Delivery{TargetID: id, Event: notice})
	}
	return deliveries
}

func (r *Router) dispatchRoomMessage(senderID string, e domain.RoomMessage) []Delivery {
	members := r.rooms.Members(e.Room)
	if len(members) == 0 {
		// Unknown or emptied room: no deliveries, no error.
		r.logger.Debug("room message to empty room, dropping",
			"sender_id", senderID,
			"room", e.Room,
		)
		return nil
	}

	forward := domain.RoomForward{Room: e.Room, Text: e.Text, SenderID: senderID}

	deliveries := make([]Delivery, 0, len(members))
	for _, id := range members {
		deliveries = append(deliveries, Delivery{TargetID: id, Event: forward})
	}
	return deliveries
}
