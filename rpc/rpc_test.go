// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/crypto/ed25519"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/pubsub"
	"github.com/ava-labs/countervm/server"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/trace"
	"github.com/ava-labs/countervm/vm"
)

const testBalance = 100_000_000

type testNode struct {
	vm      *vm.VM
	uri     string
	stream  *pubsub.Server
	factory *auth.ED25519Factory
}

func newTestNode(t *testing.T) *testNode {
	require := require.New(t)

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	factory := auth.NewED25519Factory(priv)

	g := genesis.Default()
	g.CustomAllocation = []*genesis.CustomAllocation{
		{Address: factory.Address().String(), Balance: testBalance},
	}
	require.NoError(g.Verify())
	tracer, err := trace.New(&trace.Config{Enabled: false})
	require.NoError(err)
	v, err := vm.New(
		context.Background(),
		logging.NoLog{},
		tracer,
		g,
		g.Rules(1, ids.ID{'r', 'p', 'c'}),
		state.NewAvalancheDB(memdb.New()),
		prometheus.NewRegistry(),
	)
	require.NoError(err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	s := server.New(logging.NoLog{}, listener, server.NewDefaultConfig())
	handler, err := server.NewHandler(NewJSONRPCServer(v), Name)
	require.NoError(err)
	require.NoError(s.AddRoute(handler, Name, JSONRPCEndpoint))
	_, ws := NewWebSocketServer(v, 128)
	require.NoError(s.AddRoute(ws, Name, WebSocketEndpoint))
	go func() {
		_ = s.Dispatch()
	}()
	t.Cleanup(func() {
		_ = s.Shutdown()
		_ = v.Close()
	})
	return &testNode{
		vm:      v,
		uri:     "http://" + listener.Addr().String() + "/" + Name,
		stream:  ws,
		factory: factory,
	}
}

func TestJSONRPC(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	node := newTestNode(t)
	cli := NewJSONRPCClient(node.uri)

	ok, err := cli.Ping(ctx)
	require.NoError(err)
	require.True(ok)

	network, err := cli.Network(ctx)
	require.NoError(err)
	require.Equal(uint32(1), network.NetworkID)
	require.Equal(ids.ID{'r', 'p', 'c'}, network.ChainID)
	require.Equal(node.vm.Rules().GetProgramID(), network.ProgramID)

	addr, bump, err := cli.CounterAddress(ctx)
	require.NoError(err)
	expectedAddr, expectedBump := node.vm.CounterAddress()
	require.Equal(expectedAddr, addr)
	require.Equal(expectedBump, bump)

	counter, err := cli.Counter(ctx)
	require.NoError(err)
	require.False(counter.Exists)
	require.Equal(addr, counter.Address)

	balance, err := cli.Balance(ctx, node.factory.Address())
	require.NoError(err)
	require.Equal(uint64(testBalance), balance)

	result, err := cli.SendTransaction(ctx, node.vm.Parser(), []chain.Action{&actions.Initialize{Counter: addr}}, node.factory)
	require.NoError(err)
	require.True(result.Success)
	require.Len(result.Outputs, 1)
	output, err := chain.UnmarshalOutput(result.Outputs[0], node.vm.Parser())
	require.NoError(err)
	require.Equal(&actions.InitializeResult{Count: 0, Bump: bump}, output)

	counter, err = cli.Counter(ctx)
	require.NoError(err)
	require.True(counter.Exists)
	require.Zero(counter.Count)
	require.Equal(bump, counter.Bump)

	// Rent for the record was paid by the signer
	rent, err := storage.DefaultRent().MinimumBalance(storage.CounterSpace)
	require.NoError(err)
	balance, err = cli.Balance(ctx, node.factory.Address())
	require.NoError(err)
	require.Equal(uint64(testBalance)-rent, balance)

	// Initializing again executes but fails
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	other := auth.NewED25519Factory(priv)
	result, err = cli.SendTransaction(ctx, node.vm.Parser(), []chain.Action{&actions.Initialize{Counter: addr}}, other)
	require.ErrorIs(err, ErrTxFailed)
	require.False(result.Success)
	require.Contains(result.Error, storage.ErrAccountAlreadyInitialized.Error())

	// A rejected tx is an RPC error
	tx, err := cli.GenerateTransaction(ctx, node.vm.Parser(), []chain.Action{&actions.Increment{Counter: addr}}, node.factory)
	require.NoError(err)
	_, _, err = cli.SubmitTx(ctx, tx.Bytes())
	require.NoError(err)
	_, _, err = cli.SubmitTx(ctx, tx.Bytes())
	require.ErrorContains(err, chain.ErrDuplicateTx.Error())

	_, _, err = cli.SubmitTx(ctx, []byte{0x01})
	require.Error(err)
}

func TestWebSocket(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	node := newTestNode(t)
	cli := NewJSONRPCClient(node.uri)
	addr, _, err := cli.CounterAddress(ctx)
	require.NoError(err)

	ws, err := NewWebSocketClient(node.uri)
	require.NoError(err)
	defer ws.Close()

	// Results of txs submitted over JSON-RPC are streamed too
	init, err := cli.GenerateTransaction(ctx, node.vm.Parser(), []chain.Action{&actions.Initialize{Counter: addr}}, node.factory)
	require.NoError(err)
	require.Eventually(func() bool {
		return node.stream.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)
	_, _, err = cli.SubmitTx(ctx, init.Bytes())
	require.NoError(err)
	msg, err := ws.Listen()
	require.NoError(err)
	require.Equal(init.ID(), msg.TxID)
	require.True(msg.Result.Success)

	inc, err := cli.GenerateTransaction(ctx, node.vm.Parser(), []chain.Action{&actions.Increment{Counter: addr}}, node.factory)
	require.NoError(err)
	require.NoError(ws.IssueTx(inc))
	msg, err = ws.Listen()
	require.NoError(err)
	require.Equal(inc.ID(), msg.TxID)
	require.True(msg.Result.Success)
	require.Equal([]string{
		"Previous counter: 0",
		"Counter incremented! Current count: 1",
	}, msg.Result.Logs)
	require.Equal(node.factory.Address(), msg.Result.Actor)

	// Resubmitting is rejected and only the sender is told
	require.NoError(ws.IssueTx(inc))
	msg, err = ws.Listen()
	require.NoError(err)
	require.Equal(inc.ID(), msg.TxID)
	require.Nil(msg.Result)
	require.Contains(msg.Error, chain.ErrDuplicateTx.Error())
}
