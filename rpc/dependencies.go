// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/storage"
)

type VM interface {
	Rules() *genesis.Rules
	Parser() chain.Parser
	Logger() logging.Logger
	Tracer() trace.Tracer

	CounterAddress() (codec.Address, uint8)
	GetCounter(ctx context.Context) (*storage.Counter, bool, error)
	GetBalance(ctx context.Context, addr codec.Address) (uint64, error)

	Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error)
	Subscribe(func(*chain.Result))
}
