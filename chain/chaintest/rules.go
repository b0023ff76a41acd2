// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/storage"
)

var _ chain.Rules = (*Rules)(nil)

// Rules is a fixed [chain.Rules] for tests.
type Rules struct {
	ChainID          ids.ID
	ProgramID        codec.Address
	ValidityWindow   int64
	MaxActionsPerTx  uint8
	BaseComputeUnits uint64
	Rent             storage.Rent
}

// NewRules returns rules with the default rent and a one minute validity
// window.
func NewRules(programID codec.Address) *Rules {
	return &Rules{
		ChainID:          ids.GenerateTestID(),
		ProgramID:        programID,
		ValidityWindow:   60_000,
		MaxActionsPerTx:  16,
		BaseComputeUnits: 1,
		Rent:             storage.DefaultRent(),
	}
}

func (r *Rules) GetChainID() ids.ID { return r.ChainID }

func (r *Rules) GetProgramID() codec.Address { return r.ProgramID }

func (r *Rules) GetValidityWindow() int64 { return r.ValidityWindow }

func (r *Rules) GetMaxActionsPerTx() uint8 { return r.MaxActionsPerTx }

func (r *Rules) GetBaseComputeUnits() uint64 { return r.BaseComputeUnits }

func (r *Rules) GetRent() storage.Rent { return r.Rent }
