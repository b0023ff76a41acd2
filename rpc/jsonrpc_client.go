// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/requester"
	"github.com/ava-labs/countervm/utils"
)

type JSONRPCClient struct {
	requester *requester.EndpointRequester

	network *NetworkReply
}

// NewJSONRPCClient creates a client for the service mounted at
// [uri]/countervm.
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	req := requester.New(uri, Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

// Network is fetched once and cached.
func (cli *JSONRPCClient) Network(ctx context.Context) (*NetworkReply, error) {
	if cli.network != nil {
		return cli.network, nil
	}

	resp := new(NetworkReply)
	err := cli.requester.SendRequest(
		ctx,
		"network",
		nil,
		resp,
	)
	if err != nil {
		return nil, err
	}
	cli.network = resp
	return resp, nil
}

func (cli *JSONRPCClient) CounterAddress(ctx context.Context) (codec.Address, uint8, error) {
	resp := new(CounterAddressReply)
	err := cli.requester.SendRequest(
		ctx,
		"counterAddress",
		nil,
		resp,
	)
	return resp.Address, resp.Bump, err
}

func (cli *JSONRPCClient) Counter(ctx context.Context) (*CounterReply, error) {
	resp := new(CounterReply)
	err := cli.requester.SendRequest(
		ctx,
		"counter",
		nil,
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) Balance(ctx context.Context, addr codec.Address) (uint64, error) {
	resp := new(BalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"balance",
		&BalanceArgs{Address: addr},
		resp,
	)
	return resp.Amount, err
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, d []byte) (ids.ID, *chain.Result, error) {
	resp := new(SubmitTxReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: d},
		resp,
	)
	return resp.TxID, resp.Result, err
}

// GenerateTransaction signs [actions] with [factory], expiring at the end of
// the chain's validity window.
func (cli *JSONRPCClient) GenerateTransaction(
	ctx context.Context,
	parser chain.Parser,
	actions []chain.Action,
	factory chain.AuthFactory,
) (*chain.Transaction, error) {
	network, err := cli.Network(ctx)
	if err != nil {
		return nil, err
	}
	base := &chain.Base{
		Timestamp: utils.UnixRMilli(-1, network.ValidityWindow),
		ChainID:   network.ChainID,
	}
	tx, err := chain.NewTx(base, actions).Sign(factory, parser)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign transaction", err)
	}
	return tx, nil
}

// SendTransaction generates, submits and returns the result of [actions].
// A result that did not succeed is returned with [ErrTxFailed].
func (cli *JSONRPCClient) SendTransaction(
	ctx context.Context,
	parser chain.Parser,
	actions []chain.Action,
	factory chain.AuthFactory,
) (*chain.Result, error) {
	tx, err := cli.GenerateTransaction(ctx, parser, actions, factory)
	if err != nil {
		return nil, err
	}
	_, result, err := cli.SubmitTx(ctx, tx.Bytes())
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return result, fmt.Errorf("%w: %s", ErrTxFailed, result.Error)
	}
	return result, nil
}
