package relay

import (
	"context"
	"sync"

	"github.com/mikanbox/relay/pkg/domain"
)

type mockConn struct {
	id      string
	mu      sync.Mutex
	events  []domain.OutboundEvent
	closed  bool
	sendErr error
}

func newMockConn(id string) *mockConn {
	return &mockConn{id: id}
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(ctx context.Context, event domain.OutboundEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) received() []domain.OutboundEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.OutboundEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *mockConn) countOf(eventName string) int {
	count := 0
	for _, ev := range m.received() {
		if ev.EventName() == eventName {
			count++
		}
	}
	return count
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
