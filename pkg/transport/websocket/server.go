package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/mikanbox/relay/internal/logging"
	"github.com/mikanbox/relay/pkg/domain"
	"github.com/mikanbox/relay/pkg/relay"
	"github.com/mikanbox/relay/pkg/transport/protocol"
	"github.com/rs/xid"
)

// Authenticator verifies the upgrade request before a connection reaches
// the relay core. The core itself never authenticates.
type Authenticator interface {
	// Authenticate returns the authenticated subject, or an error that
	// rejects the upgrade.
	Authenticate(r *http.Request) (string, error)
}

// ServerOptions represents websocket server options
type ServerOptions struct {
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
	Hub             *relay.Hub
	Logger          *logging.Logger
	Codec           protocol.Codec
	Authenticator   Authenticator
	ClientOptions   ClientOptions
}

// ServerOption is a function that configures ServerOptions
type ServerOption func(*ServerOptions)

// Server accepts websocket connections and bridges them to the hub: each
// accepted connection gets an id, a registry entry and a read/write pump
// pair, and every decoded inbound event is routed through the hub.
type Server struct {
	upgrader websocket.Upgrader
	hub      *relay.Hub
	logger   *logging.Logger
	codec    protocol.Codec
	options  ServerOptions
}

// NewServer creates a new websocket server
func NewServer(opts ...ServerOption) *Server {
	options := ServerOptions{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins by default (configure for production)
		},
		ClientOptions: DefaultClientOptions(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Codec == nil {
		options.Codec = protocol.NewJSONCodec()
	}
	if options.Logger == nil {
		options.Logger = logging.New(logging.Config{Level: "info", Format: "text"})
	}

	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  options.ReadBufferSize,
			WriteBufferSize: options.WriteBufferSize,
			CheckOrigin:     options.CheckOrigin,
		},
		hub:     options.Hub,
		logger:  options.Logger,
		codec:   options.Codec,
		options: options,
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var subject string
	if s.options.Authenticator != nil {
		sub, err := s.options.Authenticator.Authenticate(r)
		if err != nil {
			s.logger.Warn("rejecting unauthenticated connection",
				"remote_addr", r.RemoteAddr,
				"error", err,
			)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		subject = sub
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade error",
			"error", err,
			"remote_addr", r.RemoteAddr,
		)
		return
	}

	connID := xid.New().String()

	client := NewClient(connID, conn, s.codec, s.logger, s.options.ClientOptions)

	client.Receive(func(event domain.InboundEvent) error {
		s.hub.Route(client.Context(), connID, event)
		return nil
	})

	if err := s.hub.Register(client); err != nil {
		s.logger.Error("failed to register connection",
			"error", err,
			"conn_id", connID,
		)
		client.Close()
		return
	}

	client.Start()

	s.logger.Info("connection accepted",
		"conn_id", connID,
		"subject", subject,
		"remote_addr", r.RemoteAddr,
	)

	// Wait for the connection to close; the read pump cancels the client
	// context on local close, remote close and transport error alike, so
	// the cleanup below runs exactly once per connection.
	<-client.Context().Done()

	s.hub.Unregister(connID)
}
