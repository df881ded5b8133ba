// internal/game/conn.go
package game

import (
	"context"

	"github.com/google/uuid"
)

// PlayerConn wraps a single client's live connection. The transport layer
// creates one per accepted websocket and drains OutChan in its write pump;
// the game layer only ever writes events into the channel.
type PlayerConn struct {
	ID      uuid.UUID
	Cancel  context.CancelFunc
	OutChan chan Event
}

// Write queues an event for delivery. The send is non-blocking: a consumer
// that has fallen more than a channel buffer behind loses events rather than
// stalling a handler that holds the game lock.
func (conn *PlayerConn) Write(ev Event) {
	select {
	case conn.OutChan <- ev:
	default:
	}
}

// WriteError queues the structured error reply for err.
func (conn *PlayerConn) WriteError(err error) {
	conn.Write(ErrorEvent(err))
}

// Close tears down the connection's pumps via its context. Safe to call on a
// conn whose transport has already gone away.
func (conn *PlayerConn) Close() {
	if conn.Cancel != nil {
		conn.Cancel()
	}
}
