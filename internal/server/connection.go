package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *Message
	session   *Session
	logger    *log.Logger
	clock     quartz.Clock
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex // guards session
	closeOnce sync.Once

	idleTimeout time.Duration
	idleTimer   *quartz.Timer
}

// NewConnection creates a new connection wrapper
func NewConnection(id string, conn *websocket.Conn, session *Session, clock quartz.Clock, idleTimeout time.Duration, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:          id,
		conn:        conn,
		send:        make(chan *Message, 256),
		session:     session,
		logger:      logger.WithPrefix("conn").With("conn", id),
		clock:       clock,
		ctx:         ctx,
		cancel:      cancel,
		idleTimeout: idleTimeout,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	if c.idleTimeout > 0 {
		c.idleTimer = c.clock.AfterFunc(c.idleTimeout, c.expire, "conn", "idle")
	}
	for _, msg := range c.session.Greeting() {
		_ = c.SendMessage(msg)
	}
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.idleTimer != nil {
			c.idleTimer.Stop()
		}
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	idleReason = "idle timeout"
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		if c.idleTimer != nil {
			c.idleTimer.Reset(c.idleTimeout, "conn", "idle")
		}

		c.logger.Debug("Received message", "type", msg.Type)
		c.mu.Lock()
		replies := c.session.Handle(&msg)
		c.mu.Unlock()
		for _, reply := range replies {
			if err := c.SendMessage(reply); err != nil {
				return
			}
		}
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}
			if message.Type == MessageTypeSessionOver && c.isOver() {
				c.closeGracefully()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) isOver() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.over
}

func (c *Connection) closeGracefully() {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session over"))
}

// expire runs on the idle timer and ends the session
func (c *Connection) expire() {
	c.logger.Info("Closing idle connection", "timeout", c.idleTimeout)
	c.mu.Lock()
	msg := c.session.Expire(idleReason)
	c.mu.Unlock()
	_ = c.SendMessage(msg)
}
