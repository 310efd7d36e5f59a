package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mikanbox/relay/internal/logging"
	"github.com/mikanbox/relay/pkg/domain"
	"github.com/mikanbox/relay/pkg/errors"
	"github.com/mikanbox/relay/pkg/transport/protocol"
)

// ClientOptions represents websocket client options
type ClientOptions struct {
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBufferSize int
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 512 * 1024, // 512KB
		SendBufferSize: 256,
	}
}

// Client implements domain.Conn over a websocket connection. It owns the
// inbound event decoder and the outbound event encoder for the connection.
type Client struct {
	id       string
	conn     *websocket.Conn
	codec    protocol.Codec
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *logging.Logger
	errs     errors.Handler
	options  ClientOptions
	sendChan chan []byte
	handler  domain.InboundHandler
	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
}

// NewClient creates a new websocket client
func NewClient(id string, conn *websocket.Conn, codec protocol.Codec, logger *logging.Logger, options ClientOptions) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	if options.SendBufferSize <= 0 {
		options.SendBufferSize = 256
	}

	connLogger := logger.WithFields(map[string]any{"conn_id": id})

	return &Client{
		id:       id,
		conn:     conn,
		codec:    codec,
		ctx:      ctx,
		cancel:   cancel,
		logger:   connLogger,
		errs:     errors.NewDefaultHandler(connLogger.Logger),
		options:  options,
		sendChan: make(chan []byte, options.SendBufferSize),
	}
}

// ID implements domain.Conn
func (c *Client) ID() string {
	return c.id
}

// Send implements domain.Conn. The event is encoded and queued; a full
// queue fails the send rather than blocking the caller.
func (c *Client) Send(ctx context.Context, event domain.OutboundEvent) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return domain.ErrConnectionClosed
	}
	c.mu.RUnlock()

	data, err := c.codec.EncodeOutbound(event)
	if err != nil {
		return err
	}

	select {
	case c.sendChan <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return domain.ErrConnectionClosed
	default:
		return errors.New(errors.ErrorTypeTransport, "SEND_BUFFER_FULL", "send buffer is full")
	}
}

// Receive sets the handler invoked for every decoded inbound event.
// Must be called before Start.
func (c *Client) Receive(handler domain.InboundHandler) {
	c.handler = handler
}

// Close implements domain.Conn. Safe to call more than once; only the
// first call tears the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.logger.Debug("closing connection")

	c.cancel()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug("error closing websocket connection", "error", err)
	}

	c.wg.Wait()

	return nil
}

// Context returns the client's context; it is done once the connection is
// closed.
func (c *Client) Context() context.Context {
	return c.ctx
}

// Start starts the client read and write pumps
func (c *Client) Start() {
	c.wg.Add(2)
	go c.readPump()
	go c.writePump()
}

// readPump pumps events from the websocket connection
func (c *Client) readPump() {
	defer c.wg.Done()
	defer func() {
		c.logger.Debug("read pump stopped")
		c.cancel()
	}()

	c.conn.SetReadLimit(c.options.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.options.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.options.ReadTimeout))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			messageType, message, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					c.logger.Error("websocket read error", "error", err)
				}
				return
			}

			if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
				continue
			}

			event, err := c.codec.DecodeInbound(message)
			if err != nil {
				// Bad input never tears the connection down; drop the
				// frame and keep reading.
				c.errs.Handle(c.ctx, err)
				continue
			}

			if c.handler != nil {
				if err := c.handler(event); err != nil {
					c.logger.Error("inbound handler error", "event", event.EventName(), "error", err)
				}
			}
		}
	}
}

// writePump pumps queued frames to the websocket connection
func (c *Client) writePump() {
	defer c.wg.Done()
	defer func() {
		c.logger.Debug("write pump stopped")
	}()

	ticker := time.NewTicker(c.options.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case message := <-c.sendChan:
			c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout))

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

			// Drain any queued frames
			n := len(c.sendChan)
			for i := 0; i < n; i++ {
				select {
				case msg := <-c.sendChan:
					if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						c.logger.Error("websocket write error", "error", err)
						return
					}
				default:
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error("websocket ping error", "error", err)
				return
			}
		}
	}
}
