package websocket

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Cormuckle/dist_systems_group_M/arena_server/protocol"
	"github.com/gorilla/websocket"
)

var (
	ErrSendQueueFull = errors.New("send queue full")
	ErrConnClosed    = errors.New("connection closed")
)

// client is one WebSocket connection. Frames are queued by Send and written by
// writePump, so the simulation loop never waits on the network.
type client struct {
	id      string
	conn    *websocket.Conn
	codec   protocol.Codec
	msgType int

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(id string, conn *websocket.Conn, codec protocol.Codec) *client {
	msgType := websocket.TextMessage
	if codec.Binary() {
		msgType = websocket.BinaryMessage
	}
	return &client{
		id:      id,
		conn:    conn,
		codec:   codec,
		msgType: msgType,
		send:    make(chan []byte, sendQueueSize),
	}
}

func (c *client) Codec() protocol.Codec {
	return c.codec
}

// Send queues a frame without blocking.
func (c *client) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close stops the writer, which sends a close frame and closes the socket.
func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	return nil
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(c.msgType, b); err != nil {
				log.Printf("Write error for %s: %v", c.id, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
