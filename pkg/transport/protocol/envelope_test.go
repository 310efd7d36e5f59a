package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikanbox/relay/pkg/domain"
	"github.com/mikanbox/relay/pkg/errors"
)

func TestJSONCodec_DecodeInbound(t *testing.T) {
	codec := NewJSONCodec()

	tests := []struct {
		name string
		data string
		want domain.InboundEvent
	}{
		{
			name: "send message",
			data: `{"event":"send-message","payload":{"text":"hi"}}`,
			want: domain.SendMessage{Text: "hi"},
		},
		{
			name: "send message with recipient",
			data: `{"event":"send-message","payload":{"text":"hi","recipient_id":"b"}}`,
			want: domain.SendMessage{Text: "hi", RecipientID: "b"},
		},
		{
			name: "join room",
			data: `{"event":"join-room","payload":{"room":"r1"}}`,
			want: domain.JoinRoom{Room: "r1"},
		},
		{
			name: "room message",
			data: `{"event":"room-message","payload":{"room":"r1","text":"x"}}`,
			want: domain.RoomMessage{Room: "r1", Text: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.DecodeInbound([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONCodec_DecodeInboundErrors(t *testing.T) {
	codec := NewJSONCodec()

	tests := []struct {
		name string
		data string
		code string
	}{
		{
			name: "malformed frame",
			data: `{not json`,
			code: "MALFORMED_FRAME",
		},
		{
			name: "unknown event",
			data: `{"event":"teleport","payload":{}}`,
			code: "UNKNOWN_EVENT",
		},
		{
			name: "malformed payload",
			data: `{"event":"send-message","payload":"not an object"}`,
			code: "MALFORMED_PAYLOAD",
		},
		{
			name: "join without room",
			data: `{"event":"join-room","payload":{}}`,
			code: "EMPTY_ROOM",
		},
		{
			name: "room message without room",
			data: `{"event":"room-message","payload":{"text":"x"}}`,
			code: "EMPTY_ROOM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.DecodeInbound([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, got)

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

func TestJSONCodec_EncodeOutbound(t *testing.T) {
	codec := NewJSONCodec()

	tests := []struct {
		name  string
		event domain.OutboundEvent
		want  string
	}{
		{
			name:  "self echo",
			event: domain.SelfEcho{Text: "hi"},
			want:  `{"event":"self-echo","payload":{"text":"hi"}}`,
		},
		{
			name:  "broadcast",
			event: domain.Broadcast{Text: "hi", SenderID: "a"},
			want:  `{"event":"broadcast","payload":{"text":"hi","sender_id":"a"}}`,
		},
		{
			name:  "private",
			event: domain.Private{Text: "psst", SenderID: "a"},
			want:  `{"event":"private","payload":{"text":"psst","sender_id":"a"}}`,
		},
		{
			name:  "room notice",
			event: domain.RoomNotice{Room: "r1", Text: "a joined the room"},
			want:  `{"event":"room-notice","payload":{"room":"r1","text":"a joined the room"}}`,
		},
		{
			name:  "room forward",
			event: domain.RoomForward{Room: "r1", Text: "x", SenderID: "a"},
			want:  `{"event":"room-forward","payload":{"room":"r1","text":"x","sender_id":"a"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := codec.EncodeOutbound(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestJSONCodec_EnvelopeRoundTrip(t *testing.T) {
	codec := NewJSONCodec()

	data, err := codec.EncodeOutbound(domain.Broadcast{Text: "hi", SenderID: "a"})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "broadcast", env.Event)
	assert.NotEmpty(t, env.Payload)
}
