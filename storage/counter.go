// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/near/borsh-go"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/state"
)

const (
	DiscriminatorLen = 8
	counterBodyLen   = consts.Uint64Len + consts.Uint8Len

	// CounterSpace is the number of data bytes allocated for a counter.
	CounterSpace = DiscriminatorLen + counterBodyLen
)

// CounterDiscriminator prefixes every counter record.
var CounterDiscriminator = accountDiscriminator("Counter")

func accountDiscriminator(name string) [DiscriminatorLen]byte {
	h := hashing.ComputeHash256([]byte("account:" + name))
	var d [DiscriminatorLen]byte
	copy(d[:], h)
	return d
}

// Counter is the record held by the counter account.
type Counter struct {
	Count uint64 `json:"count"`
	Bump  uint8  `json:"bump"`
}

// EncodeCounter returns the discriminator followed by the borsh body.
func EncodeCounter(c *Counter) ([]byte, error) {
	body, err := borsh.Serialize(*c)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, CounterSpace)
	data = append(data, CounterDiscriminator[:]...)
	return append(data, body...), nil
}

// DecodeCounter checks the discriminator and decodes the body of [data].
func DecodeCounter(data []byte) (*Counter, error) {
	if len(data) < DiscriminatorLen || [DiscriminatorLen]byte(data[:DiscriminatorLen]) != CounterDiscriminator {
		return nil, ErrAccountDiscriminatorMismatch
	}
	body := data[DiscriminatorLen:]
	if len(body) < counterBodyLen {
		return nil, fmt.Errorf("%w: body len=%d", ErrAccountDidNotDeserialize, len(body))
	}
	var c Counter
	if err := borsh.Deserialize(&c, body[:counterBodyLen]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAccountDidNotDeserialize, err)
	}
	return &c, nil
}

// LoadCounter reads the counter at [addr], which must be owned by
// [programID].
func LoadCounter(ctx context.Context, im state.Immutable, addr codec.Address, programID codec.Address) (*Counter, error) {
	a, exists, err := GetAccount(ctx, im, addr)
	if err != nil {
		return nil, err
	}
	return counterFromAccount(a, exists, programID)
}

// LoadCounterFromState is LoadCounter for RPC reads.
func LoadCounterFromState(ctx context.Context, f ReadState, addr codec.Address, programID codec.Address) (*Counter, error) {
	a, exists, err := GetAccountFromState(ctx, f, addr)
	if err != nil {
		return nil, err
	}
	return counterFromAccount(a, exists, programID)
}

func counterFromAccount(a *Account, exists bool, programID codec.Address) (*Counter, error) {
	if !exists || (a.Owner == SystemProgramID && len(a.Data) == 0) {
		return nil, ErrAccountNotInitialized
	}
	if a.Owner != programID {
		return nil, fmt.Errorf("%w: owner=%s", ErrAccountOwnedByWrongProgram, a.Owner)
	}
	return DecodeCounter(a.Data)
}

// StoreCounter rewrites the record of an existing counter account.
func StoreCounter(ctx context.Context, mu state.Mutable, addr codec.Address, c *Counter) error {
	a, exists, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAccountNotInitialized
	}
	data, err := EncodeCounter(c)
	if err != nil {
		return err
	}
	a.Data = data
	return SetAccount(ctx, mu, addr, a)
}
