package ws

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// Client is one live websocket connection. Its ID is the opaque connection
// identifier the registry keys membership by.
type Client struct {
	conn *connWrapper
	send chan Envelope
	id   string
}

func NewClient(conn *websocket.Conn, id string) *Client {
	return &Client{
		conn: newConnWrapper(conn),
		send: make(chan Envelope, 64), // buffered to avoid dead-locks on slow clients
		id:   id,
	}
}

func (c *Client) ConnID() string { return c.id }

// CloseSend is called by the session exactly once, on unregister; it lets
// WritePump drain and exit.
func (c *Client) CloseSend() { close(c.send) }

// TrySend queues an envelope without blocking. A full buffer means the
// client is too slow; the event is dropped for that client only.
func (c *Client) TrySend(env Envelope) bool {
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// ReadPump decodes inbound frames and feeds them to the session loop.
// Malformed frames are skipped; a read error ends the connection and
// triggers the implicit disconnect cleanup.
func (c *Client) ReadPump(session *Session) {
	defer func() {
		session.Unregister() <- c
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.id, err)
			}
			break
		}

		var frame ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}

		session.Frames() <- InboundFrame{From: c, Frame: frame}
	}
}

// WritePump drains the send buffer onto the wire. It exits when the session
// closes the channel on unregister.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for env := range c.send {
		if err := c.conn.WriteJSON(env); err != nil {
			log.Printf("ws write error (client %s): %v", c.id, err)
			break
		}
	}
}
