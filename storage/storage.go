// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/keys"
	"github.com/ava-labs/countervm/state"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

type ReadState func(context.Context, [][]byte) ([][]byte, []error)

// State
// 0x0/ (accounts)
//   -> [address] => lamports|owner|data
// 0x1/ (genesis marker)

const (
	accountPrefix byte = 0x0
	genesisPrefix byte = 0x1
)

const (
	AccountChunks uint16 = 4
	// MaxAccountDataLen keeps every account inside [AccountChunks].
	MaxAccountDataLen = int(AccountChunks)*64 - 1 - (consts.Uint64Len + codec.AddressLen + consts.IntLen)
)

// SystemProgramID owns plain wallets and unallocated accounts.
var SystemProgramID = codec.EmptyAddress

// Account is the envelope stored under every address.
type Account struct {
	Lamports uint64        `json:"lamports"`
	Owner    codec.Address `json:"owner"`
	Data     []byte        `json:"data"`
}

// Empty is true for accounts that hold nothing and can be removed.
func (a *Account) Empty() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

func (a *Account) Marshal() []byte {
	p := codec.NewWriter(consts.Uint64Len+codec.AddressLen+codec.BytesLen(a.Data), consts.MaxInt)
	p.PackUint64(a.Lamports)
	p.PackAddress(a.Owner)
	p.PackBytes(a.Data)
	return p.Bytes()
}

func UnmarshalAccount(b []byte) (*Account, error) {
	p := codec.NewReader(b, consts.MaxInt)
	var a Account
	a.Lamports = p.UnpackUint64(false)
	p.UnpackAddress(&a.Owner)
	p.UnpackBytes(MaxAccountDataLen, false, &a.Data)
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidAccount, len(b)-p.Offset())
	}
	return &a, nil
}

// [accountPrefix] + [address] + [AccountChunks]
func AccountKey(addr codec.Address) []byte {
	k := make([]byte, 0, consts.ByteLen+codec.AddressLen+consts.Uint16Len)
	k = append(k, accountPrefix)
	k = append(k, addr[:]...)
	return keys.EncodeChunks(k, AccountChunks)
}

// GetAccount returns the account at [addr]. Missing accounts return false.
func GetAccount(ctx context.Context, im state.Immutable, addr codec.Address) (*Account, bool, error) {
	return innerGetAccount(im.GetValue(ctx, AccountKey(addr)))
}

// GetAccountFromState is GetAccount for RPC reads outside of a view.
func GetAccountFromState(ctx context.Context, f ReadState, addr codec.Address) (*Account, bool, error) {
	values, errs := f(ctx, [][]byte{AccountKey(addr)})
	return innerGetAccount(values[0], errs[0])
}

func innerGetAccount(v []byte, err error) (*Account, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	a, err := UnmarshalAccount(v)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// SetAccount writes [a], removing the key when the account is empty.
func SetAccount(ctx context.Context, mu state.Mutable, addr codec.Address, a *Account) error {
	k := AccountKey(addr)
	if a.Empty() {
		return mu.Remove(ctx, k)
	}
	if len(a.Data) > MaxAccountDataLen {
		return fmt.Errorf("%w: data len=%d max=%d", ErrInvalidAccount, len(a.Data), MaxAccountDataLen)
	}
	return mu.Insert(ctx, k, a.Marshal())
}

func GetBalance(ctx context.Context, im state.Immutable, addr codec.Address) (uint64, error) {
	a, exists, err := GetAccount(ctx, im, addr)
	if err != nil || !exists {
		return 0, err
	}
	return a.Lamports, nil
}

func GetBalanceFromState(ctx context.Context, f ReadState, addr codec.Address) (uint64, error) {
	a, exists, err := GetAccountFromState(ctx, f, addr)
	if err != nil || !exists {
		return 0, err
	}
	return a.Lamports, nil
}

// AddBalance credits [amount] to [addr], creating a system-owned account if
// none exists.
func AddBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) (uint64, error) {
	a, exists, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	if !exists {
		a = &Account{Owner: SystemProgramID}
	}
	nbal, err := smath.Add(a.Lamports, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not add balance (bal=%d, addr=%s, amount=%d)",
			ErrInvalidBalance,
			a.Lamports,
			addr,
			amount,
		)
	}
	a.Lamports = nbal
	return nbal, SetAccount(ctx, mu, addr, a)
}

// SubBalance debits [amount] from [addr].
func SubBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) (uint64, error) {
	a, exists, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	if !exists {
		a = &Account{Owner: SystemProgramID}
	}
	nbal, err := smath.Sub(a.Lamports, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not subtract balance (bal=%d, addr=%s, amount=%d)",
			ErrInsufficientFunds,
			a.Lamports,
			addr,
			amount,
		)
	}
	a.Lamports = nbal
	return nbal, SetAccount(ctx, mu, addr, a)
}

// GenesisKey marks that genesis allocations have been applied.
func GenesisKey() []byte {
	return keys.EncodeChunks([]byte{genesisPrefix}, 1)
}
