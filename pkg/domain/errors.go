package domain

import (
	"errors"
)

// Common domain errors
var (
	// ErrDuplicateID is returned when registering a connection whose id is
	// already present in the registry
	ErrDuplicateID = errors.New("connection id already registered")

	// ErrConnNotFound is returned when a connection is not found
	ErrConnNotFound = errors.New("connection not found")

	// ErrConnectionClosed is returned when trying to use a closed connection
	ErrConnectionClosed = errors.New("connection closed")

	// ErrHubStopped is returned when trying to use a hub that has been stopped
	ErrHubStopped = errors.New("hub stopped")

	// ErrInvalidEvent is returned when an inbound event is malformed
	ErrInvalidEvent = errors.New("invalid event")
)
