package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRooms_JoinCreatesRoom(t *testing.T) {
	r := NewRooms()

	assert.True(t, r.Join("r1", "a"))
	assert.Equal(t, 1, r.Count())
	assert.ElementsMatch(t, []string{"a"}, r.Members("r1"))
}

func TestRooms_JoinIdempotent(t *testing.T) {
	r := NewRooms()

	assert.True(t, r.Join("r1", "a"))
	assert.False(t, r.Join("r1", "a"))
	assert.ElementsMatch(t, []string{"a"}, r.Members("r1"))
}

func TestRooms_LeaveDeletesEmptyRoom(t *testing.T) {
	r := NewRooms()
	r.Join("r1", "a")
	r.Join("r1", "b")

	assert.True(t, r.Leave("r1", "a"))
	assert.Equal(t, 1, r.Count())

	assert.True(t, r.Leave("r1", "b"))
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.Members("r1"))
}

func TestRooms_LeaveAbsent(t *testing.T) {
	r := NewRooms()
	r.Join("r1", "a")

	assert.False(t, r.Leave("r1", "ghost"))
	assert.False(t, r.Leave("nope", "a"))
	assert.ElementsMatch(t, []string{"a"}, r.Members("r1"))
}

func TestRooms_MembershipAcrossRooms(t *testing.T) {
	r := NewRooms()
	r.Join("r1", "a")
	r.Join("r2", "a")
	r.Join("r2", "b")

	assert.True(t, r.Contains("r1", "a"))
	assert.True(t, r.Contains("r2", "a"))
	assert.False(t, r.Contains("r1", "b"))
}

func TestRooms_LeaveAll(t *testing.T) {
	r := NewRooms()
	r.Join("r1", "a")
	r.Join("r2", "a")
	r.Join("r2", "b")
	r.Join("r3", "b")

	left := r.LeaveAll("a")
	assert.ElementsMatch(t, []string{"r1", "r2"}, left)

	// r1 emptied and deleted; r2 survives with its other member.
	assert.Equal(t, 2, r.Count())
	assert.Empty(t, r.Members("r1"))
	assert.ElementsMatch(t, []string{"b"}, r.Members("r2"))

	// No dangling membership anywhere.
	for _, room := range []string{"r1", "r2", "r3"} {
		assert.False(t, r.Contains(room, "a"))
	}

	// Nothing left to leave.
	assert.Empty(t, r.LeaveAll("a"))
}

func TestRooms_JoinLeaveSequences(t *testing.T) {
	tests := []struct {
		name string
		ops  func(*Rooms)
		want []string
	}{
		{
			name: "join then join equals join",
			ops: func(r *Rooms) {
				r.Join("r", "a")
				r.Join("r", "a")
				r.Join("r", "b")
			},
			want: []string{"a", "b"},
		},
		{
			name: "leave of absent id is a no-op",
			ops: func(r *Rooms) {
				r.Join("r", "a")
				r.Leave("r", "b")
			},
			want: []string{"a"},
		},
		{
			name: "unmatched trailing joins survive",
			ops: func(r *Rooms) {
				r.Join("r", "a")
				r.Leave("r", "a")
				r.Join("r", "a")
				r.Join("r", "b")
				r.Leave("r", "b")
			},
			want: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRooms()
			tt.ops(r)
			assert.ElementsMatch(t, tt.want, r.Members("r"))
		})
	}
}

func TestRooms_MembersSnapshot(t *testing.T) {
	r := NewRooms()
	r.Join("r1", "a")

	snapshot := r.Members("r1")
	r.Join("r1", "b")

	assert.ElementsMatch(t, []string{"a"}, snapshot)
}
