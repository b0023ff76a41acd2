// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server maintains the set of active clients and sends messages to the
// clients. It is an [http.Handler] and is mounted on an existing router.
type Server struct {
	log      logging.Logger
	config   *ServerConfig
	upgrader websocket.Upgrader

	conns    registry
	callback Callback
}

// New returns a new Server instance. The callback function [callback] is
// called by the server in response to messages if not nil.
func New(log logging.Logger, config *ServerConfig, callback Callback) *Server {
	return &Server{
		log:    log,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			// Origins are checked by the CORS layer in front of this handler.
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		callback: callback,
	}
}

// ServeHTTP adds a connection to the server, and starts go routines for
// reading and writing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := &Connection{
		s:    s,
		conn: wsConn,
		send: make(chan []byte, s.config.MaxPendingMessages),
	}
	conn.active.Store(true)
	if !s.conns.add(conn) {
		_ = wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		_ = wsConn.Close()
		return
	}

	go conn.writePump()
	go conn.readPump()
}

// Publish sends [msg] to every connection and returns the number of
// connections that dropped it.
func (s *Server) Publish(msg []byte) int {
	dropped := 0
	for _, conn := range s.conns.snapshot() {
		if !conn.Send(msg) {
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Verbo("dropped message to subscribed connections",
			zap.Int("count", dropped),
		)
	}
	return dropped
}

// Len is the number of open connections.
func (s *Server) Len() int {
	return s.conns.len()
}

// Close disconnects every subscriber and rejects new ones. The write pumps
// send a close frame before exiting.
func (s *Server) Close() {
	conns := s.conns.close()
	for _, conn := range conns {
		conn.deactivate()
	}
	s.log.Debug("closed pubsub server",
		zap.Int("connections", len(conns)),
	)
}

func (s *Server) removeConnection(conn *Connection) {
	s.conns.remove(conn)
}
