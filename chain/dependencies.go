// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
)

type Rules interface {
	GetChainID() ids.ID
	// GetProgramID is the program that owns counter records.
	GetProgramID() codec.Address

	GetValidityWindow() int64 // in milliseconds
	GetMaxActionsPerTx() uint8
	GetBaseComputeUnits() uint64

	GetRent() storage.Rent
}

// Output is the typed value an [Action] returns on success.
type Output interface {
	codec.Typed

	Marshal(p *codec.Packer)
}

type Action interface {
	codec.Typed

	// ComputeUnits is the amount of compute required to call [Execute].
	ComputeUnits(Rules) uint64

	// StateKeys is a full enumeration of all database keys that could be
	// touched during execution by [actor]. Every key must end with its
	// chunk limit (see package keys).
	StateKeys(actor codec.Address) state.Keys

	// Execute runs the action against [mu]. Any returned error aborts the
	// whole transaction and every change it made is rolled back.
	//
	// Lines added to [logs] are returned to the caller even when the
	// transaction fails.
	Execute(
		ctx context.Context,
		r Rules,
		mu state.Mutable,
		actor codec.Address,
		logs *Logs,
	) (Output, error)

	Size() int
	Marshal(p *codec.Packer)
}

type Auth interface {
	codec.Typed

	ComputeUnits(Rules) uint64

	// Verify checks the signature over [msg]. It never reads state.
	Verify(ctx context.Context, msg []byte) error

	// Actor is the account that authorized the transaction.
	Actor() codec.Address

	Size() int
	Marshal(p *codec.Packer)
}

type AuthFactory interface {
	Sign(msg []byte) (Auth, error)
	Address() codec.Address
}
