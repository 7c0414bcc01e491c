package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"proctor-service/internal/catalog"
	"proctor-service/internal/integrity"
	"proctor-service/internal/session"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	commandBuffer = 64
)

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
	Game   catalog.Game

	Session *session.Session
	// Set only when faces are counted on the client.
	faces *integrity.ReportedFaceProvider

	mediaDevices atomic.Bool
	replies      *pendingReplies
	commands     chan Message

	ctx    context.Context
	cancel context.CancelFunc

	sendMu sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, game catalog.Game) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		UserID:   userID,
		Game:     game,
		replies:  newPendingReplies(),
		commands: make(chan Message, commandBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
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
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			c.SendError("Invalid message format")
			continue
		}

		c.Hub.HandleMessage <- &ClientMessage{
			Client:  c,
			Message: msg,
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Printf("Failed to get next writer for user %s: %v", c.UserID, err)
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				log.Printf("Failed to close writer for user %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// runCommands applies session commands one at a time, in arrival order.
func (c *Client) runCommands() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-c.commands:
			c.Hub.applyCommand(c, msg)
		}
	}
}

func (c *Client) enqueue(msg Message) {
	select {
	case c.commands <- msg:
	case <-c.ctx.Done():
	default:
		log.Printf("Command queue full for user %s, dropping %s", c.UserID, msg.Type)
		c.SendError("Too many messages")
	}
}

// SendMessage never blocks; it is called from session callbacks under the session lock.
func (c *Client) SendMessage(msgType MessageType, payload any) {
	msg := Message{
		Type:    msgType,
		Payload: payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("Client send channel full, closing connection for user %s", c.UserID)
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) SendError(message string) {
	c.SendMessage(MessageTypeError, ErrorPayload{Message: message})
}

// shutdown stops the command loop and closes Send once.
func (c *Client) shutdown() {
	c.cancel()
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
