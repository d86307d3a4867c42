package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/Cormuckle/dist_systems_group_M/arena_server/playerstate"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/protocol"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/sim"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendQueueSize  = 64
)

// upgrader upgrades HTTP connections to WebSocket.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// In production, restrict allowed origins.
		return true
	},
}

// Submitter is the part of the simulation loop the handler needs.
type Submitter interface {
	Submit(cmd any) bool
}

// Handler upgrades requests to WebSocket connections and feeds their frames
// into the simulation loop.
type Handler struct {
	loop Submitter
}

func NewHandler(loop Submitter) *Handler {
	return &Handler{loop: loop}
}

// ServeHTTP serves one client for the lifetime of its connection. The codec is
// chosen with the "codec" query parameter (json or msgpack).
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	codec, err := protocol.CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	c := newClient(uuid.NewString(), conn, codec)
	go c.writePump()

	if !h.loop.Submit(sim.Connect{ID: c.id, Conn: c}) {
		c.Close()
		return
	}
	log.Printf("Client %s connected (%s)", c.id, codec.Name())

	h.readPump(c)

	log.Printf("Client %s disconnected", c.id)
	if !h.loop.Submit(sim.Disconnect{ID: c.id}) {
		c.Close()
	}
}

// readPump listens for messages from the client until the connection fails.
func (h *Handler) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		msg, err := c.codec.Decode(message)
		if err != nil {
			log.Printf("Error parsing message from %s: %v", c.id, err)
			continue
		}

		var cmd any
		switch msg.T {
		case protocol.MsgJoin:
			cmd = sim.Join{ID: c.id, Name: msg.P.Name, Color: msg.P.Color}
		case protocol.MsgRespawn:
			cmd = sim.Respawn{ID: c.id, Name: msg.P.Name, Color: msg.P.Color}
		case protocol.MsgMove:
			cmd = sim.Move{ID: c.id, Input: playerstate.Input{
				Up:    msg.P.Up,
				Down:  msg.P.Down,
				Left:  msg.P.Left,
				Right: msg.P.Right,
				Boost: msg.P.Boost,
			}}
		default:
			log.Printf("Ignoring unknown event %q from %s", msg.T, c.id)
			continue
		}
		if !h.loop.Submit(cmd) {
			return
		}
	}
}
