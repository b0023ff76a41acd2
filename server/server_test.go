// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

type PingReply struct {
	Success bool `json:"success"`
}

type pingService struct{}

func (*pingService) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	reply.Success = true
	return nil
}

func startServer(t *testing.T) (*Server, string) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg := NewDefaultConfig()
	cfg.ShutdownTimeout = time.Second
	s := New(logging.NoLog{}, listener, cfg)
	go func() {
		_ = s.Dispatch()
	}()
	return s, "http://" + s.Addr().String()
}

func TestServerRoutes(t *testing.T) {
	require := require.New(t)
	s, uri := startServer(t)
	defer func() {
		require.NoError(s.Shutdown())
	}()

	handler, err := NewHandler(&pingService{}, "test")
	require.NoError(err)
	require.NoError(s.AddRoute(handler, "test", "/rpc"))
	require.ErrorIs(s.AddRoute(handler, "test", "/rpc"), ErrDuplicateRoute)

	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "test.ping",
		"params":  struct{}{},
		"id":      1,
	})
	require.NoError(err)
	resp, err := http.Post(uri+"/test/rpc", "application/json", bytes.NewReader(body))
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(err)
	var reply struct {
		Result PingReply `json:"result"`
	}
	require.NoError(json.Unmarshal(raw, &reply))
	require.True(reply.Result.Success)

	missing, err := http.Get(uri + "/missing")
	require.NoError(err)
	require.NoError(missing.Body.Close())
	require.Equal(http.StatusNotFound, missing.StatusCode)
}
