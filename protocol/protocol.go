package protocol

// Client -> server events.
const (
	MsgJoin    = "join"
	MsgRespawn = "respawn"
	MsgMove    = "move"
)

// Server -> client events.
const (
	MsgInit       = "init"
	MsgGameState  = "gameState"
	MsgDead       = "dead"
	MsgPlayerLeft = "playerLeft"
	MsgAnnounce   = "announce"
)

// Envelope is the frame shape for outbound events.
type Envelope struct {
	T string `json:"t" msgpack:"t"`
	P any    `json:"p,omitempty" msgpack:"p,omitempty"`
}

// ClientMessage is the frame shape for inbound events. All inbound payloads
// share one flat struct; fields that do not apply to an event stay zero.
type ClientMessage struct {
	T string        `json:"t" msgpack:"t"`
	P ClientPayload `json:"p" msgpack:"p"`
}

type ClientPayload struct {
	Name  string `json:"name,omitempty" msgpack:"name,omitempty"`
	Color string `json:"color,omitempty" msgpack:"color,omitempty"`
	Up    bool   `json:"up,omitempty" msgpack:"up,omitempty"`
	Down  bool   `json:"down,omitempty" msgpack:"down,omitempty"`
	Left  bool   `json:"left,omitempty" msgpack:"left,omitempty"`
	Right bool   `json:"right,omitempty" msgpack:"right,omitempty"`
	Boost bool   `json:"boost,omitempty" msgpack:"boost,omitempty"`
}
