package relay

import (
	"sync"

	"github.com/op/go-logging"
)

// Conn is the transport side of one chat participant.
type Conn interface {
	ID() string
	Emit(event string, data interface{}) error
}

// Relay routes events between connections that share a room. Membership is
// additive: joining a second room does not leave the first, and routing is
// by the room named on each message rather than a single current room.
type Relay struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Conn
	log   *logging.Logger
}

// New creates an empty relay.
func New(log *logging.Logger) *Relay {
	return &Relay{
		rooms: make(map[string]map[string]Conn),
		log:   log,
	}
}

// Join adds the connection to a room. Joining the same room twice is a
// no-op.
func (r *Relay) Join(conn Conn, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]Conn)
		r.rooms[room] = members
	}
	members[conn.ID()] = conn
}

// Broadcast delivers an event to every member of the room except the sender.
// Members are snapshotted first so a join or disconnect during fan-out is
// safe, and one failed delivery never stops the rest.
func (r *Relay) Broadcast(senderID, room, event string, data interface{}) {
	r.mu.RLock()
	members := make([]Conn, 0, len(r.rooms[room]))
	for id, conn := range r.rooms[room] {
		if id == senderID {
			continue
		}
		members = append(members, conn)
	}
	r.mu.RUnlock()

	for _, conn := range members {
		if err := conn.Emit(event, data); err != nil {
			r.log.Debugf("Dropped %s to %s: %v", event, conn.ID(), err)
		}
	}
}

// Disconnect removes the connection from every room it joined. Former
// room-mates are not notified.
func (r *Relay) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room, members := range r.rooms {
		if _, ok := members[connID]; !ok {
			continue
		}
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
}
