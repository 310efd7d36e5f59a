package errors

import (
	"context"
	"log/slog"
)

// Handler reports errors through a consistent policy.
type Handler interface {
	// Handle reports an error with the handler's own logger
	Handle(ctx context.Context, err error)

	// HandleWithLogger reports an error with the given logger
	HandleWithLogger(ctx context.Context, err error, logger *slog.Logger)
}

// DefaultHandler logs classified errors at a level derived from their
// type. Unclassified errors log at error level.
type DefaultHandler struct {
	logger *slog.Logger
}

// NewDefaultHandler creates a handler backed by the given logger.
func NewDefaultHandler(logger *slog.Logger) *DefaultHandler {
	return &DefaultHandler{logger: logger}
}

func (h *DefaultHandler) Handle(ctx context.Context, err error) {
	h.HandleWithLogger(ctx, err, h.logger)
}

func (h *DefaultHandler) HandleWithLogger(ctx context.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	e, ok := err.(*Error)
	if !ok {
		logger.ErrorContext(ctx, "unhandled error", slog.String("error", err.Error()))
		return
	}

	attrs := []slog.Attr{
		slog.String("error_code", e.Code),
		slog.String("error_type", e.Type.String()),
		slog.Time("timestamp", e.Timestamp),
	}
	if e.Details != "" {
		attrs = append(attrs, slog.String("details", e.Details))
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}

	logger.LogAttrs(ctx, e.level(), e.Message, attrs...)
}

// level maps an error type to its log level. Addressing and protocol
// failures are expected during normal operation and stay below error.
func (e *Error) level() slog.Level {
	switch e.Type {
	case ErrorTypeInternal, ErrorTypeTransport:
		return slog.LevelError
	case ErrorTypeTimeout, ErrorTypeNotFound, ErrorTypeAddressing, ErrorTypeProtocol:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
