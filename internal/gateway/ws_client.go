package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/config"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// WebSocketClient implements the Client interface on a gorilla websocket
// connection.
type WebSocketClient struct {
	UserID  string
	ConnID  string
	Conn    *websocket.Conn
	Gateway *Gateway
	Send    chan models.ServerFrame

	closeOnce sync.Once
	done      chan struct{}
}

func NewWebSocketClient(userID string, conn *websocket.Conn, gw *Gateway) *WebSocketClient {
	return &WebSocketClient{
		UserID:  userID,
		ConnID:  uuid.New().String(),
		Conn:    conn,
		Gateway: gw,
		Send:    make(chan models.ServerFrame, config.SendBufferSize),
		done:    make(chan struct{}),
	}
}

func (c *WebSocketClient) GetUserID() string { return c.UserID }
func (c *WebSocketClient) GetConnID() string { return c.ConnID }

func (c *WebSocketClient) GetSendChannel() chan<- models.ServerFrame { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close signals the write pump to shut the connection down. The Send channel
// itself is never closed: a handler continuation that resumes after the
// disconnect may still try to queue a frame for this client, and that send
// must stay a harmless drop, not a panic on the loop goroutine. Safe to call
// repeatedly; the gateway closes a client both on logout and on the pump's
// own unregister path.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Gateway.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading from connection %s: %v", c.ConnID, err)
			}
			break
		}

		var frame models.ClientFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			log.Printf("Error decoding frame from connection %s: %v", c.ConnID, err)
			c.enqueue(models.ServerFrame{
				Event: models.EventError,
				Data:  models.ErrorPayload{Error: "frame is not valid JSON", Code: "invalid_payload"},
			})
			continue
		}

		c.Gateway.InboundCh <- InboundFrame{Client: c, Frame: frame}
	}
}

// enqueue queues a frame for the write pump without blocking the read pump.
func (c *WebSocketClient) enqueue(frame models.ServerFrame) {
	select {
	case c.Send <- frame:
	default:
		log.Printf("WARNING: Dropping %s frame for slow connection %s", frame.Event, c.ConnID)
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))

			data, err := json.Marshal(frame)
			if err != nil {
				log.Printf("Error encoding frame for connection %s: %v", c.ConnID, err)
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			if err := w.Close(); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
