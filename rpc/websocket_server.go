// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"encoding/json"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/pubsub"
)

// StreamMessage is a single websocket frame. Results of every executed
// transaction are broadcast to all connections. A transaction submitted over
// the socket and rejected before execution is answered with [Error] on the
// submitting connection only.
type StreamMessage struct {
	TxID   ids.ID        `json:"txId"`
	Result *chain.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type WebSocketServer struct {
	vm VM
	s  *pubsub.Server
}

func NewWebSocketServer(vm VM, maxPendingMessages int) (*WebSocketServer, *pubsub.Server) {
	w := &WebSocketServer{vm: vm}
	cfg := pubsub.NewDefaultServerConfig()
	cfg.MaxPendingMessages = maxPendingMessages
	w.s = pubsub.New(w.vm.Logger(), cfg, w.MessageCallback())
	vm.Subscribe(w.ExecuteResult)
	return w, w.s
}

// ExecuteResult broadcasts [result] to every connection.
func (w *WebSocketServer) ExecuteResult(result *chain.Result) {
	if w.s.Len() == 0 {
		return
	}
	msg, err := json.Marshal(&StreamMessage{TxID: result.TxID, Result: result})
	if err != nil {
		w.vm.Logger().Error("failed to marshal result",
			zap.Stringer("txID", result.TxID),
			zap.Error(err),
		)
		return
	}
	w.s.Publish(msg)
}

func (w *WebSocketServer) MessageCallback() pubsub.Callback {
	// Assumes controller is initialized before this is called
	var (
		tracer = w.vm.Tracer()
		log    = w.vm.Logger()
		parser = w.vm.Parser()
	)

	return func(msgBytes []byte, c *pubsub.Connection) {
		ctx, span := tracer.Start(context.Background(), "WebSocketServer.Callback")
		defer span.End()

		// Check empty messages
		if len(msgBytes) == 0 {
			log.Error("failed to unmarshal msg",
				zap.Int("len", len(msgBytes)),
			)
			return
		}
		tx, err := chain.ParseTx(msgBytes, parser)
		if err != nil {
			log.Debug("failed to unmarshal tx",
				zap.Int("len", len(msgBytes)),
				zap.Error(err),
			)
			w.reply(c, &StreamMessage{Error: err.Error()})
			return
		}
		// Accepted transactions reach [c] through [ExecuteResult].
		if _, err := w.vm.Submit(ctx, tx); err != nil {
			log.Debug("failed to submit tx",
				zap.Stringer("txID", tx.ID()),
				zap.Error(err),
			)
			w.reply(c, &StreamMessage{TxID: tx.ID(), Error: err.Error()})
		}
	}
}

// Close disconnects all subscribers. Hijacked websocket connections are not
// closed by [http.Server.Shutdown].
func (w *WebSocketServer) Close() {
	w.s.Close()
}

func (w *WebSocketServer) reply(c *pubsub.Connection, m *StreamMessage) {
	msg, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.Send(msg)
}
