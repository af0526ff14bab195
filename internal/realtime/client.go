package realtime

import (
	"net/http"
	"sync"
	"time"

	"property-market/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auction topics are public; any origin may listen
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscriber
type Client struct {
	ID    string
	hub   *Hub
	topic string
	conn  *websocket.Conn
	send  chan []byte

	closeOnce sync.Once
}

// ServeAuctionWS upgrades the request to a websocket subscribed to one
// auction's topic. The first frame sent is the connection id, which the
// client echoes back in X-Socket-ID on bid requests so its own bids are
// not broadcast back to it.
func (h *Hub) ServeAuctionWS(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", map[string]any{
			"error": err.Error(),
		})
		return
	}

	client := &Client{
		ID:    uuid.NewString(),
		hub:   h,
		topic: AuctionTopic(auctionID),
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
	}

	h.Subscribe(client.topic, client)

	conn.WriteJSON(Message{Event: "connection.established", Data: gin.H{"socket_id": client.ID}})

	go client.writePump()
	go client.readPump()
}

// enqueue queues a payload for delivery, reporting whether it fit in the
// client's buffer
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// drop removes a subscriber that cannot keep up. The send channel is only
// closed after the client is unregistered, so no publish can reach it
// again; writePump then delivers a close frame and tears the
// connection down.
func (c *Client) drop() {
	if c.hub != nil {
		c.hub.Unsubscribe(c.topic, c)
	}
	c.closeOnce.Do(func() { close(c.send) })
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

func (c *Client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c.topic, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Subscribers are listen-only; inbound frames are discarded
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
