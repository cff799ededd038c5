package game

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tapquest/tapquest-backend/internal"
)

// =============================================================================
// WEBSOCKET TRANSPORT
// =============================================================================

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection. The read pump feeds parsed messages to
// the hub; the write pump drains the send queue. Only the hub loop calls
// enqueue and close, so neither needs locking.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan internal.Message[any]
}

func (c *Client) enqueue(msg internal.Message[any]) bool {
	select {
	case c.send <- msg:
		return true
	default:
		log.Printf("[Client.enqueue] conn=%s send queue full, dropping %s", c.id, msg.Type)
		return false
	}
}

func (c *Client) close() {
	close(c.send)
}

// HandleWebSocket upgrades the connection, registers it with the hub and
// starts the pump goroutines.
func HandleWebSocket(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("[HandleWebSocket] upgrade failed:", err)
			return
		}

		character := r.URL.Query().Get("character")
		if character == "" {
			character = "guest"
		}

		c := &Client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan internal.Message[any], sendQueueSize),
		}
		log.Printf("[HandleWebSocket] conn=%s character=%s connected from %s", c.id, character, r.RemoteAddr)

		h.Attach(c.id, character, c)
		go c.writePump()
		go c.readPump(h)
	}
}

// readPump parses inbound frames and posts them to the hub. Exit, for any
// reason, detaches the connection.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.Detach(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Client.readPump] conn=%s read error: %v", c.id, err)
			}
			return
		}

		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[Client.readPump] conn=%s malformed frame: %v", c.id, err)
			continue
		}
		h.Inbound(c.id, msg.Type, msg.Data)
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings. It owns all writes to the socket.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[Client.writePump] conn=%s write error: %v", c.id, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
