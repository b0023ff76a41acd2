// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Callback handles a message read from [*Connection].
type Callback func([]byte, *Connection)

// Connection is one websocket subscriber. Reads and writes each run on their
// own goroutine; anything else talks to the socket through [Send].
type Connection struct {
	s    *Server
	conn *websocket.Conn

	// Outbound queue, closed by [deactivate].
	send chan []byte

	active    atomic.Bool
	closeOnce sync.Once
}

func (c *Connection) isActive() bool {
	return c.active.Load()
}

// deactivate stops delivery. The write pump flushes a close frame and exits
// once [send] is closed.
func (c *Connection) deactivate() {
	c.closeOnce.Do(func() {
		c.active.Store(false)
		close(c.send)
	})
}

// Send queues [msg] and reports whether it was queued. A full queue drops
// the message instead of blocking the publisher.
func (c *Connection) Send(msg []byte) (sent bool) {
	defer func() {
		// [send] may be closed between the check and the write.
		if recover() != nil {
			sent = false
		}
	}()
	if !c.isActive() {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.s.log.Debug("dropping message to slow connection")
		return false
	}
}

// teardown runs when either pump exits. The second call finds the socket
// already closed.
func (c *Connection) teardown() {
	c.s.removeConnection(c)
	c.deactivate()
	_ = c.conn.Close()
}

func (c *Connection) readPump() {
	defer c.teardown()

	cfg := c.s.config
	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	}
	c.conn.SetReadLimit(cfg.MaxReadMessageSize)
	if err := extend(""); err != nil {
		return
	}
	c.conn.SetPongHandler(extend)

	for {
		_, r, err := c.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.s.log.Debug("unexpected websocket close",
					zap.Error(err),
				)
			}
			return
		}
		if c.s.callback == nil {
			continue
		}
		msg, err := io.ReadAll(r)
		if err != nil {
			c.s.log.Debug("failed to read websocket message",
				zap.Error(err),
			)
			return
		}
		c.s.callback(msg, c)
	}
}

// write sends one frame of [messageType] within the configured write wait.
func (c *Connection) write(messageType int, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, payload)
}

func (c *Connection) writePump() {
	ping := time.NewTicker(c.s.config.PingPeriod)
	defer func() {
		ping.Stop()
		c.teardown()
	}()

	for {
		var err error
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			err = c.write(websocket.TextMessage, msg)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			c.s.log.Debug("closing websocket connection",
				zap.Error(err),
			)
			return
		}
	}
}
