// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package requester

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/server"
)

type EchoArgs struct {
	Message string `json:"message"`
}

type EchoReply struct {
	Message string `json:"message"`
}

type echoService struct{}

func (*echoService) Echo(_ *http.Request, args *EchoArgs, reply *EchoReply) error {
	if args.Message == "" {
		return &json2.Error{Code: json2.E_BAD_PARAMS, Message: "empty message"}
	}
	reply.Message = args.Message
	return nil
}

func newEchoServer(t *testing.T) *httptest.Server {
	handler, err := server.NewHandler(&echoService{}, "test")
	require.NoError(t, err)
	return httptest.NewServer(handler)
}

func TestSendRequest(t *testing.T) {
	require := require.New(t)
	web := newEchoServer(t)
	defer web.Close()

	cli := New(web.URL, "test")
	reply := new(EchoReply)
	require.NoError(cli.SendRequest(context.Background(), "echo", &EchoArgs{Message: "hello"}, reply))
	require.Equal("hello", reply.Message)

	err := cli.SendRequest(context.Background(), "echo", &EchoArgs{}, reply)
	require.ErrorContains(err, "empty message")
}

func TestSendRequestStatus(t *testing.T) {
	web := httptest.NewServer(http.NotFoundHandler())
	defer web.Close()

	cli := New(web.URL, "test")
	err := cli.SendRequest(context.Background(), "echo", &EchoArgs{Message: "hello"}, new(EchoReply))
	require.ErrorIs(t, err, ErrUnexpectedStatus)
}
