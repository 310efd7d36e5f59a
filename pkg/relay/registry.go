package relay

import (
	"sync"

	"github.com/mikanbox/relay/pkg/domain"
)

// Registry is the process-wide mapping from connection id to live
// connection. A connection id appears at most once; entries are removed
// synchronously with disconnect.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]domain.Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]domain.Conn),
	}
}

// Register adds a connection. A duplicate id is an invariant violation:
// the registration is rejected with domain.ErrDuplicateID and the existing
// entry is left untouched.
func (r *Registry) Register(conn domain.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[conn.ID()]; exists {
		return domain.ErrDuplicateID
	}

	r.conns[conn.ID()] = conn
	return nil
}

// Unregister removes a connection by id. Idempotent: the second call for
// the same id returns false.
func (r *Registry) Unregister(id string) (domain.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if !ok {
		return nil, false
	}

	delete(r.conns, id)
	return conn, true
}

// Lookup returns the connection for id, if registered. Never blocks.
func (r *Registry) Lookup(id string) (domain.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[id]
	return conn, ok
}

// All returns a snapshot of every registered connection. The snapshot is a
// copy; concurrent register/unregister cannot mutate it under an iterator.
func (r *Registry) All() []domain.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]domain.Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
