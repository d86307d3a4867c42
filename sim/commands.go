package sim

import (
	"github.com/Cormuckle/dist_systems_group_M/arena_server/playerstate"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/protocol"
)

// Conn is the loop's view of a client connection. Send must not block.
type Conn interface {
	Send([]byte) error
	Close() error
	Codec() protocol.Codec
}

// Connect registers a connection. It receives broadcasts from the next tick on.
type Connect struct {
	ID   string
	Conn Conn
}

// Join creates the connection's player. Joining twice is a no-op.
type Join struct {
	ID    string
	Name  string
	Color string
}

// Respawn resets the connection's player, or creates it if absent.
type Respawn struct {
	ID    string
	Name  string
	Color string
}

// Move replaces the player's latest input.
type Move struct {
	ID    string
	Input playerstate.Input
}

// Disconnect removes the connection and its player.
type Disconnect struct {
	ID string
}

// Announce broadcasts an operator message to every connection.
type Announce struct {
	Message string
}
