package store

import (
	"context"
	"time"

	"github.com/mikanbox/relay/internal/eventbus"
	"github.com/mikanbox/relay/internal/logging"
)

// Recorder subscribes to relayed-message events on the bus and logs them
// to the message store. It sits downstream of delivery: a slow or failing
// store is logged and otherwise ignored.
type Recorder struct {
	messages Messages
	bus      eventbus.Bus
	logger   *logging.Logger
	subID    string
	timeout  time.Duration
}

// NewRecorder creates a recorder over the given message log.
func NewRecorder(messages Messages, bus eventbus.Bus, logger *logging.Logger) *Recorder {
	return &Recorder{
		messages: messages,
		bus:      bus,
		logger:   logger,
		timeout:  5 * time.Second,
	}
}

// Start subscribes the recorder to the bus.
func (r *Recorder) Start() {
	r.subID = r.bus.Subscribe(eventbus.EventMessageRelayed, r.record)
}

// Stop unsubscribes the recorder.
func (r *Recorder) Stop() {
	if r.subID != "" {
		r.bus.Unsubscribe(r.subID)
		r.subID = ""
	}
}

func (r *Recorder) record(event *eventbus.Event) {
	text, _ := event.Data.(string)

	msg := Message{
		Kind:     event.Metadata["kind"],
		Room:     event.Metadata["room"],
		SenderID: event.Metadata["sender_id"],
		Text:     text,
		SentAt:   event.Timestamp,
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.messages.Insert(ctx, msg); err != nil {
		r.logger.Warn("failed to log message",
			"sender_id", msg.SenderID,
			"error", err,
		)
	}
}
