package protocol

import (
	"encoding/json"

	"github.com/mikanbox/relay/pkg/domain"
	"github.com/mikanbox/relay/pkg/errors"
)

// Envelope represents a transport-level event frame
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type sendMessagePayload struct {
	Text        string `json:"text"`
	RecipientID string `json:"recipient_id,omitempty"`
}

type joinRoomPayload struct {
	Room string `json:"room"`
}

type roomMessagePayload struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

type selfEchoPayload struct {
	Text string `json:"text"`
}

type broadcastPayload struct {
	Text     string `json:"text"`
	SenderID string `json:"sender_id"`
}

type privatePayload struct {
	Text     string `json:"text"`
	SenderID string `json:"sender_id"`
}

type roomNoticePayload struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

type roomForwardPayload struct {
	Room     string `json:"room"`
	Text     string `json:"text"`
	SenderID string `json:"sender_id"`
}

// Codec defines the interface for event encoding/decoding
type Codec interface {
	// DecodeInbound decodes one wire frame into an inbound event
	DecodeInbound(data []byte) (domain.InboundEvent, error)

	// EncodeOutbound encodes an outbound event into one wire frame
	EncodeOutbound(event domain.OutboundEvent) ([]byte, error)
}

// JSONCodec implements Codec using JSON envelopes
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// DecodeInbound implements the Codec interface
func (c *JSONCodec) DecodeInbound(data []byte) (domain.InboundEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeProtocol, "MALFORMED_FRAME", "failed to unmarshal envelope")
	}

	switch env.Event {
	case "send-message":
		var p sendMessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeProtocol, "MALFORMED_PAYLOAD", "failed to unmarshal send-message payload")
		}
		return domain.SendMessage{Text: p.Text, RecipientID: p.RecipientID}, nil

	case "join-room":
		var p joinRoomPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeProtocol, "MALFORMED_PAYLOAD", "failed to unmarshal join-room payload")
		}
		if p.Room == "" {
			return nil, errors.New(errors.ErrorTypeValidation, "EMPTY_ROOM", "join-room requires a room name")
		}
		return domain.JoinRoom{Room: p.Room}, nil

	case "room-message":
		var p roomMessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeProtocol, "MALFORMED_PAYLOAD", "failed to unmarshal room-message payload")
		}
		if p.Room == "" {
			return nil, errors.New(errors.ErrorTypeValidation, "EMPTY_ROOM", "room-message requires a room name")
		}
		return domain.RoomMessage{Room: p.Room, Text: p.Text}, nil

	default:
		return nil, errors.New(errors.ErrorTypeProtocol, "UNKNOWN_EVENT", "unrecognized inbound event").
			WithDetails(env.Event)
	}
}

// EncodeOutbound implements the Codec interface
func (c *JSONCodec) EncodeOutbound(event domain.OutboundEvent) ([]byte, error) {
	var payload any

	switch e := event.(type) {
	case domain.SelfEcho:
		payload = selfEchoPayload{Text: e.Text}
	case domain.Broadcast:
		payload = broadcastPayload{Text: e.Text, SenderID: e.SenderID}
	case domain.Private:
		payload = privatePayload{Text: e.Text, SenderID: e.SenderID}
	case domain.RoomNotice:
		payload = roomNoticePayload{Room: e.Room, Text: e.Text}
	case domain.RoomForward:
		payload = roomForwardPayload{Room: e.Room, Text: e.Text, SenderID: e.SenderID}
	default:
		return nil, errors.New(errors.ErrorTypeInternal, "UNKNOWN_EVENT", "unrecognized outbound event").
			WithDetails(event.EventName())
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "MARSHAL_ERROR", "failed to marshal payload")
	}

	return json.Marshal(Envelope{
		Event:   event.EventName(),
		Payload: data,
	})
}
