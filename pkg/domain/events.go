package domain

// InboundEvent is one decoded event received from a client. The event does
// not carry the sender id; the sender is the connection that produced it.
type InboundEvent interface {
	// EventName returns the wire-level event name.
	EventName() string

	inbound()
}

// SendMessage asks the relay to echo the text back to the sender and
// broadcast it to every registered connection. When RecipientID is set the
// relay additionally delivers a private copy, best effort.
type SendMessage struct {
	Text        string
	RecipientID string
}

// JoinRoom adds the sender to a room, creating the room on first join.
type JoinRoom struct {
	Room string
}

// RoomMessage asks the relay to forward the text to every member of a room.
type RoomMessage struct {
	Room string
	Text string
}

func (SendMessage) EventName() string { return "send-message" }
func (JoinRoom) EventName() string    { return "join-room" }
func (RoomMessage) EventName() string { return "room-message" }

func (SendMessage) inbound() {}
func (JoinRoom) inbound()    {}
func (RoomMessage) inbound() {}

// OutboundEvent is one event the relay delivers to a target connection.
type OutboundEvent interface {
	// EventName returns the wire-level event name.
	EventName() string

	outbound()
}

// SelfEcho confirms a sent message back to its sender.
type SelfEcho struct {
	Text string
}

// Broadcast carries a message to every registered connection, the sender
// included.
type Broadcast struct {
	Text     string
	SenderID string
}

// Private carries a message addressed to exactly one connection.
type Private struct {
	Text     string
	SenderID string
}

// RoomNotice carries a membership announcement to the members of a room.
type RoomNotice struct {
	Room string
	Text string
}

// RoomForward carries a room-scoped message to the members of a room, the
// sender included.
type RoomForward struct {
	Room     string
	Text     string
	SenderID string
}

func (SelfEcho) EventName() string    { return "self-echo" }
func (Broadcast) EventName() string   { return "broadcast" }
func (Private) EventName() string     { return "private" }
func (RoomNotice) EventName() string  { return "room-notice" }
func (RoomForward) EventName() string { return "room-forward" }

func (SelfEcho) outbound()    {}
func (Broadcast) outbound()   {}
func (Private) outbound()     {}
func (RoomNotice) outbound()  {}
func (RoomForward) outbound() {}
