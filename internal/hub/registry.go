// Package hub tracks which connections are live in which room and fans
// messages out to them.
package hub

import "sync"

// Conn is the interface the hub expects from a live connection.
type Conn interface {
	Identity() string
	Send(data []byte)
}

// Registry maintains the live mapping of room id to connected participants.
// It is independent of persisted room membership: whoever is admitted with a
// room id is live in that room until the connection closes.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{}
	conns map[Conn]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[Conn]struct{}),
		conns: make(map[Conn]string),
	}
}

// Join adds a connection to a room. Multiple connections for the same
// identity are all tracked independently.
func (r *Registry) Join(roomID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[Conn]struct{})
		r.rooms[roomID] = room
	}
	room[c] = struct{}{}
	r.conns[c] = roomID
}

// Leave removes a connection from its room. Idempotent: calling it for a
// connection that already left is a no-op.
func (r *Registry) Leave(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.conns[c]
	if !ok {
		return
	}
	delete(r.conns, c)
	if room, ok := r.rooms[roomID]; ok {
		delete(room, c)
	}
}

// MembersOf returns a snapshot of the connections currently live in a room.
func (r *Registry) MembersOf(roomID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[roomID]
	members := make([]Conn, 0, len(room))
	for c := range room {
		members = append(members, c)
	}
	return members
}

// ParticipantCount returns the number of live connections in a room.
func (r *Registry) ParticipantCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
