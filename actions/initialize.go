// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/pda"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
)

var _ chain.Action = (*Initialize)(nil)

// Initialize creates the counter record at its derived address. The actor
// pays for the allocation.
type Initialize struct {
	Counter codec.Address `json:"counter"`
}

func (*Initialize) GetTypeID() uint8 {
	return consts.InitializeID
}

func (i *Initialize) StateKeys(actor codec.Address) state.Keys {
	return state.Keys{
		string(storage.AccountKey(i.Counter)): state.All,
		string(storage.AccountKey(actor)):     state.Write,
	}
}

func (i *Initialize) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	actor codec.Address,
	logs *chain.Logs,
) (chain.Output, error) {
	programID := r.GetProgramID()
	expected, bump, err := pda.FindProgramAddress([][]byte{[]byte(consts.CounterSeed)}, programID)
	if err != nil {
		return nil, err
	}
	if expected != i.Counter {
		return nil, fmt.Errorf("%w: expected=%s got=%s", ErrConstraintSeeds, expected, i.Counter)
	}

	account, exists, err := storage.GetAccount(ctx, mu, i.Counter)
	if err != nil {
		return nil, err
	}
	switch {
	case !exists:
		account = &storage.Account{Owner: storage.SystemProgramID}
	case len(account.Data) > 0 || account.Owner != storage.SystemProgramID:
		return nil, fmt.Errorf("%w: address=%s", storage.ErrAccountAlreadyInitialized, i.Counter)
	}

	record := &storage.Counter{Count: 0, Bump: bump}
	data, err := storage.EncodeCounter(record)
	if err != nil {
		return nil, err
	}
	minBalance, err := r.GetRent().MinimumBalance(len(data))
	if err != nil {
		return nil, err
	}
	// A pre-funded address only needs to be topped up.
	if account.Lamports < minBalance {
		if _, err := storage.SubBalance(ctx, mu, actor, minBalance-account.Lamports); err != nil {
			return nil, err
		}
		account.Lamports = minBalance
	}
	account.Owner = programID
	account.Data = data
	if err := storage.SetAccount(ctx, mu, i.Counter, account); err != nil {
		return nil, err
	}

	logs.Msg("Counter account created! Current count: %d", record.Count)
	logs.Msg("Counter bump: %d", record.Bump)
	return &InitializeResult{Count: record.Count, Bump: record.Bump}, nil
}

func (*Initialize) ComputeUnits(chain.Rules) uint64 {
	return InitializeComputeUnits
}

func (*Initialize) Size() int {
	return codec.AddressLen
}

func (i *Initialize) Marshal(p *codec.Packer) {
	p.PackAddress(i.Counter)
}

func UnmarshalInitialize(p *codec.Packer) (chain.Action, error) {
	var initialize Initialize
	p.UnpackAddress(&initialize.Counter)
	return &initialize, p.Err()
}

var _ chain.Output = (*InitializeResult)(nil)

type InitializeResult struct {
	Count uint64 `json:"count"`
	Bump  uint8  `json:"bump"`
}

func (*InitializeResult) GetTypeID() uint8 {
	return consts.InitializeID
}

func (r *InitializeResult) Marshal(p *codec.Packer) {
	p.PackUint64(r.Count)
	p.PackByte(r.Bump)
}

func UnmarshalInitializeResult(p *codec.Packer) (chain.Output, error) {
	var result InitializeResult
	result.Count = p.UnpackUint64(false)
	result.Bump = p.UnpackByte()
	return &result, p.Err()
}
