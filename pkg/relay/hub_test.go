package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikanbox/relay/internal/logging"
	"github.com/mikanbox/relay/pkg/domain"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(HubOptions{
		Logger: logging.New(logging.Config{Level: "error", Format: "text"}),
	})
}

func TestHub_RegisterAndRoute(t *testing.T) {
	hub := newTestHub(t)

	a := newMockConn("a")
	b := newMockConn("b")
	require.NoError(t, hub.Register(a))
	require.NoError(t, hub.Register(b))

	hub.Route(context.Background(), "a", domain.SendMessage{Text: "hi"})

	assert.Equal(t, 1, a.countOf("self-echo"))
	assert.Equal(t, 1, a.countOf("broadcast"))
	assert.Equal(t, 1, b.countOf("broadcast"))
	assert.Equal(t, 0, b.countOf("self-echo"))
}

func TestHub_RegisterDuplicateDoesNotCorrupt(t *testing.T) {
	hub := newTestHub(t)

	a := newMockConn("a")
	require.NoError(t, hub.Register(a))
	require.ErrorIs(t, hub.Register(newMockConn("a")), domain.ErrDuplicateID)

	// The original connection still receives traffic.
	hub.Route(context.Background(), "a", domain.SendMessage{Text: "still here"})
	assert.Equal(t, 1, a.countOf("self-echo"))
}

func TestHub_UnregisterCleansRooms(t *testing.T) {
	hub := newTestHub(t)

	a := newMockConn("a")
	b := newMockConn("b")
	require.NoError(t, hub.Register(a))
	require.NoError(t, hub.Register(b))

	hub.Route(context.Background(), "a", domain.JoinRoom{Room: "r1"})
	hub.Route(context.Background(), "a", domain.JoinRoom{Room: "r2"})
	hub.Route(context.Background(), "b", domain.JoinRoom{Room: "r1"})

	hub.Unregister("a")

	_, ok := hub.Registry().Lookup("a")
	assert.False(t, ok)
	assert.True(t, a.isClosed())
	assert.False(t, hub.Rooms().Contains("r1", "a"))
	assert.False(t, hub.Rooms().Contains("r2", "a"))

	// r2 emptied and deleted, r1 kept alive by b.
	assert.Equal(t, 1, hub.Rooms().Count())

	// Duplicate disconnect signal is harmless.
	hub.Unregister("a")
}

func TestHub_DeliveryFailureIsolated(t *testing.T) {
	hub := newTestHub(t)

	a := newMockConn("a")
	broken := newMockConn("broken")
	broken.sendErr = errors.New("write failed")
	c := newMockConn("c")
	require.NoError(t, hub.Register(a))
	require.NoError(t, hub.Register(broken))
	require.NoError(t, hub.Register(c))

	hub.Route(context.Background(), "a", domain.SendMessage{Text: "hi"})

	// One failing target never aborts delivery to the rest.
	assert.Equal(t, 1, a.countOf("broadcast"))
	assert.Equal(t, 1, c.countOf("broadcast"))
	assert.Greater(t, hub.Stats().DeliveriesMissed, int64(0))
}

func TestHub_RouteDuringDisconnect(t *testing.T) {
	hub := newTestHub(t)

	a := newMockConn("a")
	b := newMockConn("b")
	require.NoError(t, hub.Register(a))
	require.NoError(t, hub.Register(b))

	hub.Route(context.Background(), "a", domain.JoinRoom{Room: "shared"})
	hub.Route(context.Background(), "b", domain.JoinRoom{Room: "shared"})

	// A's disconnect races with B's room message; the dispatch must not
	// fail and B must still receive its own forward.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Unregister("a")
	}()
	go func() {
		defer wg.Done()
		hub.Route(context.Background(), "b", domain.RoomMessage{Room: "shared", Text: "x"})
	}()
	wg.Wait()

	assert.Equal(t, 1, b.countOf("room-forward"))
	assert.False(t, hub.Rooms().Contains("shared", "a"))
}

func TestHub_StopClosesConnections(t *testing.T) {
	hub := newTestHub(t)

	a := newMockConn("a")
	require.NoError(t, hub.Register(a))

	hub.Stop()

	assert.True(t, a.isClosed())
	assert.Equal(t, 0, hub.Registry().Len())
	assert.ErrorIs(t, hub.Register(newMockConn("late")), domain.ErrHubStopped)
}

func TestHub_RegisterDuringStop(t *testing.T) {
	hub := newTestHub(t)

	conns := make([]*mockConn, 32)
	errs := make([]error, len(conns))
	for i := range conns {
		conns[i] = newMockConn(fmt.Sprintf("conn-%d", i))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Stop()
	}()
	for i := range conns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = hub.Register(conns[i])
		}(i)
	}
	wg.Wait()

	// No registration may outlive Stop: whatever got in before the flag
	// was drained and closed, the rest were rejected.
	assert.Equal(t, 0, hub.Registry().Len())
	for i := range conns {
		if errs[i] == nil {
			assert.True(t, conns[i].isClosed(), "conn-%d registered but never closed", i)
		} else {
			assert.ErrorIs(t, errs[i], domain.ErrHubStopped)
		}
	}
}

func TestHub_Stats(t *testing.T) {
	hub := newTestHub(t)

	require.NoError(t, hub.Register(newMockConn("a")))
	hub.Route(context.Background(), "a", domain.JoinRoom{Room: "r1"})
	hub.Route(context.Background(), "a", domain.SendMessage{Text: "hi"})

	stats := hub.Stats()
	assert.Equal(t, 1, stats.Connections)
	assert.Equal(t, 1, stats.Rooms)
	assert.Equal(t, int64(2), stats.MessagesRouted)
	assert.Greater(t, stats.EventsDelivered, int64(0))
}
