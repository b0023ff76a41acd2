// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/pda"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

var _ chain.Action = (*Increment)(nil)

// Increment adds one to the counter record. Any signer may call it.
type Increment struct {
	Counter codec.Address `json:"counter"`
}

func (*Increment) GetTypeID() uint8 {
	return consts.IncrementID
}

func (inc *Increment) StateKeys(codec.Address) state.Keys {
	return state.Keys{
		string(storage.AccountKey(inc.Counter)): state.Write,
	}
}

func (inc *Increment) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ codec.Address,
	logs *chain.Logs,
) (chain.Output, error) {
	programID := r.GetProgramID()
	counter, err := storage.LoadCounter(ctx, mu, inc.Counter, programID)
	if errors.Is(err, storage.ErrAccountNotInitialized) {
		// Nothing is stored here. Report a wrong address ahead of a missing
		// record.
		canonical, _, ferr := pda.FindProgramAddress([][]byte{[]byte(consts.CounterSeed)}, programID)
		if ferr == nil && canonical != inc.Counter {
			return nil, fmt.Errorf("%w: expected=%s got=%s", ErrConstraintSeeds, canonical, inc.Counter)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	// The stored bump must re-derive the supplied address.
	derived, err := pda.CreateProgramAddress(pda.CounterSeeds(consts.CounterSeed, counter.Bump), programID)
	if err != nil || derived != inc.Counter {
		return nil, fmt.Errorf("%w: bump=%d address=%s", ErrConstraintSeeds, counter.Bump, inc.Counter)
	}

	logs.Msg("Previous counter: %d", counter.Count)
	next, err := smath.Add(counter.Count, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: count=%d", ErrCounterOverflow, counter.Count)
	}
	counter.Count = next
	if err := storage.StoreCounter(ctx, mu, inc.Counter, counter); err != nil {
		return nil, err
	}
	logs.Msg("Counter incremented! Current count: %d", counter.Count)
	return &IncrementResult{Count: counter.Count}, nil
}

func (*Increment) ComputeUnits(chain.Rules) uint64 {
	return IncrementComputeUnits
}

func (*Increment) Size() int {
	return codec.AddressLen
}

func (inc *Increment) Marshal(p *codec.Packer) {
	p.PackAddress(inc.Counter)
}

func UnmarshalIncrement(p *codec.Packer) (chain.Action, error) {
	var increment Increment
	p.UnpackAddress(&increment.Counter)
	return &increment, p.Err()
}

var _ chain.Output = (*IncrementResult)(nil)

type IncrementResult struct {
	Count uint64 `json:"count"`
}

func (*IncrementResult) GetTypeID() uint8 {
	return consts.IncrementID
}

func (r *IncrementResult) Marshal(p *codec.Packer) {
	p.PackUint64(r.Count)
}

func UnmarshalIncrementResult(p *codec.Packer) (chain.Output, error) {
	var result IncrementResult
	result.Count = p.UnpackUint64(false)
	return &result, p.Err()
}
