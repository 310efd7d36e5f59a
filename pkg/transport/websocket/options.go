package websocket

import (
	"net/http"

	"github.com/mikanbox/relay/internal/logging"
	"github.com/mikanbox/relay/pkg/relay"
	"github.com/mikanbox/relay/pkg/transport/protocol"
)

// WithHub sets the hub for the server
func WithHub(hub *relay.Hub) ServerOption {
	return func(o *ServerOptions) {
		o.Hub = hub
	}
}

// WithLogger sets the logger for the server
func WithLogger(logger *logging.Logger) ServerOption {
	return func(o *ServerOptions) {
		o.Logger = logger
	}
}

// WithCheckOrigin sets the check origin function
func WithCheckOrigin(checkOrigin func(r *http.Request) bool) ServerOption {
	return func(o *ServerOptions) {
		o.CheckOrigin = checkOrigin
	}
}

// WithCodec sets the event codec
func WithCodec(codec protocol.Codec) ServerOption {
	return func(o *ServerOptions) {
		o.Codec = codec
	}
}

// WithAuthenticator sets the connection-accept authenticator
func WithAuthenticator(authenticator Authenticator) ServerOption {
	return func(o *ServerOptions) {
		o.Authenticator = authenticator
	}
}

// WithClientOptions sets the per-connection options
func WithClientOptions(options ClientOptions) ServerOption {
	return func(o *ServerOptions) {
		o.ClientOptions = options
	}
}
