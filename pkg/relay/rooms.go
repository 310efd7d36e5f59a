package relay

import (
	"sync"
)

// Rooms is the directory mapping room name to member connection ids.
// Rooms are ephemeral: created on first join, deleted when the last member
// leaves. A connection may belong to any number of rooms at once.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{}
}

// NewRooms creates an empty room directory.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[string]struct{}),
	}
}

// Join adds id to the room, creating the room if absent. Idempotent;
// returns true if the id was newly added.
func (r *Rooms) Join(room, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[room]
	if !ok {
		set = make(map[string]struct{})
		r.members[room] = set
	}

	if _, exists := set[id]; exists {
		return false
	}

	set[id] = struct{}{}
	return true
}

// Leave removes id from the room if present. Deletes the room when the
// removal empties it. Returns true if the id was a member.
func (r *Rooms) Leave(room, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.leaveLocked(room, id)
}

func (r *Rooms) leaveLocked(room, id string) bool {
	set, ok := r.members[room]
	if !ok {
		return false
	}

	if _, exists := set[id]; !exists {
		return false
	}

	delete(set, id)
	if len(set) == 0 {
		delete(r.members, room)
	}
	return true
}

// LeaveAll removes id from every room it belongs to, deleting any room
// thereby emptied. Returns the names of the rooms left. Called exactly once
// on disconnect, before the registry entry is discarded.
func (r *Rooms) LeaveAll(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var left []string
	for room, set := range r.members {
		if _, exists := set[id]; exists {
			left = append(left, room)
		}
	}

	for _, room := range left {
		r.leaveLocked(room, id)
	}
	return left
}

// Members returns a snapshot of the member ids of a room. An unknown room
// yields an empty slice, not an error.
func (r *Rooms) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.members[room]
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// Contains reports whether id is a member of the room.
func (r *Rooms) Contains(room, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.members[room]
	if !ok {
		return false
	}

	_, exists := set[id]
	return exists
}

// Count returns the number of live rooms.
func (r *Rooms) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members)
}
