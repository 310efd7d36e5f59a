package domain

import (
	"context"
)

// Conn represents one live duplex connection to a remote peer. The id is
// assigned at connect time and is stable for the connection's lifetime.
type Conn interface {
	// ID returns the unique identifier of the connection.
	ID() string

	// Send delivers an outbound event to the peer.
	Send(ctx context.Context, event OutboundEvent) error

	// Close closes the connection. Safe to call more than once.
	Close() error
}

// InboundHandler is invoked for every decoded inbound event on a connection.
type InboundHandler func(event InboundEvent) error
