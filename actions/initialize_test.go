// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/chain/chaintest"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/pda"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
)

var (
	programID = codec.Address{0xc0, 0x07, 0x17}
	payer     = codec.Address{0x01}
)

const payerFunds = 10_000_000

func canonicalCounter(t testing.TB) (codec.Address, uint8) {
	addr, bump, err := pda.FindProgramAddress([][]byte{[]byte(consts.CounterSeed)}, programID)
	require.NoError(t, err)
	return addr, bump
}

// wrongBumpCounter returns a valid derived address for the counter seed that
// does not use the canonical bump.
func wrongBumpCounter(t testing.TB) (codec.Address, uint8) {
	_, canonical := canonicalCounter(t)
	for bump := int(canonical) - 1; bump > 0; bump-- {
		addr, err := pda.CreateProgramAddress(pda.CounterSeeds(consts.CounterSeed, uint8(bump)), programID)
		if err == nil {
			return addr, uint8(bump)
		}
	}
	require.FailNow(t, "no alternative bump")
	return codec.EmptyAddress, 0
}

func fundedStore(t testing.TB) chaintest.Store {
	store := chaintest.NewStore()
	_, err := storage.AddBalance(context.Background(), store, payer, payerFunds)
	require.NoError(t, err)
	return store
}

func initializedStore(t testing.TB, count uint64) chaintest.Store {
	ctx := context.Background()
	store := fundedStore(t)
	addr, bump := canonicalCounter(t)
	data, err := storage.EncodeCounter(&storage.Counter{Count: count, Bump: bump})
	require.NoError(t, err)
	minBalance, err := storage.DefaultRent().MinimumBalance(len(data))
	require.NoError(t, err)
	require.NoError(t, storage.SetAccount(ctx, store, addr, &storage.Account{
		Lamports: minBalance,
		Owner:    programID,
		Data:     data,
	}))
	return store
}

func TestInitializeAction(t *testing.T) {
	addr, bump := canonicalCounter(t)
	wrongAddr, _ := wrongBumpCounter(t)
	rules := chaintest.NewRules(programID)
	minBalance, err := rules.GetRent().MinimumBalance(storage.CounterSpace)
	require.NoError(t, err)

	tests := []chaintest.ActionTest{
		{
			Name:            "CanonicalAddress",
			Actor:           payer,
			Action:          &Initialize{Counter: addr},
			Rules:           rules,
			State:           fundedStore(t),
			ExpectedOutputs: &InitializeResult{Count: 0, Bump: bump},
			ExpectedLogs: []string{
				"Counter account created! Current count: 0",
				fmt.Sprintf("Counter bump: %d", bump),
			},
			Assertion: func(ctx context.Context, t *testing.T, m state.Mutable) {
				require := require.New(t)
				c, err := storage.LoadCounter(ctx, m, addr, programID)
				require.NoError(err)
				require.Equal(&storage.Counter{Count: 0, Bump: bump}, c)

				account, exists, err := storage.GetAccount(ctx, m, addr)
				require.NoError(err)
				require.True(exists)
				require.Equal(programID, account.Owner)
				require.Len(account.Data, storage.CounterSpace)
				require.Equal(minBalance, account.Lamports)

				balance, err := storage.GetBalance(ctx, m, payer)
				require.NoError(err)
				require.Equal(uint64(payerFunds)-minBalance, balance)
			},
		},
		{
			Name:        "AlreadyInitialized",
			Actor:       payer,
			Action:      &Initialize{Counter: addr},
			Rules:       rules,
			State:       initializedStore(t, 7),
			ExpectedErr: storage.ErrAccountAlreadyInitialized,
			Assertion: func(ctx context.Context, t *testing.T, m state.Mutable) {
				require := require.New(t)
				c, err := storage.LoadCounter(ctx, m, addr, programID)
				require.NoError(err)
				require.Equal(uint64(7), c.Count)

				balance, err := storage.GetBalance(ctx, m, payer)
				require.NoError(err)
				require.Equal(uint64(payerFunds), balance)
			},
		},
		{
			Name:        "WrongBump",
			Actor:       payer,
			Action:      &Initialize{Counter: wrongAddr},
			Rules:       rules,
			State:       fundedStore(t),
			ExpectedErr: ErrConstraintSeeds,
			Assertion: func(ctx context.Context, t *testing.T, m state.Mutable) {
				require := require.New(t)
				_, exists, err := storage.GetAccount(ctx, m, wrongAddr)
				require.NoError(err)
				require.False(exists)
			},
		},
		{
			Name:        "InsufficientFunds",
			Actor:       codec.Address{0x02},
			Action:      &Initialize{Counter: addr},
			Rules:       rules,
			State:       chaintest.NewStore(),
			ExpectedErr: storage.ErrInsufficientFunds,
		},
		{
			Name:   "PreFundedAddress",
			Actor:  payer,
			Action: &Initialize{Counter: addr},
			Rules:  rules,
			State: func() state.Mutable {
				store := fundedStore(t)
				_, err := storage.AddBalance(context.Background(), store, addr, 1_000)
				require.NoError(t, err)
				return store
			}(),
			ExpectedOutputs: &InitializeResult{Count: 0, Bump: bump},
			Assertion: func(ctx context.Context, t *testing.T, m state.Mutable) {
				require := require.New(t)
				balance, err := storage.GetBalance(ctx, m, payer)
				require.NoError(err)
				require.Equal(uint64(payerFunds)-(minBalance-1_000), balance)

				balance, err = storage.GetBalance(ctx, m, addr)
				require.NoError(err)
				require.Equal(minBalance, balance)
			},
		},
		{
			Name:   "AddressOwnedByAnotherProgram",
			Actor:  payer,
			Action: &Initialize{Counter: addr},
			Rules:  rules,
			State: func() state.Mutable {
				store := fundedStore(t)
				require.NoError(t, storage.SetAccount(context.Background(), store, addr, &storage.Account{
					Lamports: 1,
					Owner:    codec.Address{0xff},
				}))
				return store
			}(),
			ExpectedErr: storage.ErrAccountAlreadyInitialized,
		},
	}

	for _, tt := range tests {
		tt.Run(context.Background(), t)
	}
}

func TestInitializeStateKeys(t *testing.T) {
	require := require.New(t)
	addr, _ := canonicalCounter(t)

	keys := (&Initialize{Counter: addr}).StateKeys(payer)
	require.Len(keys, 2)
	require.Equal(state.All, keys[string(storage.AccountKey(addr))])
	require.Equal(state.Write, keys[string(storage.AccountKey(payer))])
}

func TestInitializeMarshal(t *testing.T) {
	require := require.New(t)
	addr, _ := canonicalCounter(t)

	action := &Initialize{Counter: addr}
	p := codec.NewWriter(action.Size(), consts.NetworkSizeLimit)
	action.Marshal(p)
	require.NoError(p.Err())
	require.Len(p.Bytes(), action.Size())

	parsed, err := UnmarshalInitialize(codec.NewReader(p.Bytes(), consts.NetworkSizeLimit))
	require.NoError(err)
	require.Equal(action, parsed)

	result := &InitializeResult{Count: math.MaxUint64, Bump: 254}
	p = codec.NewWriter(consts.Uint64Len+consts.Uint8Len, consts.NetworkSizeLimit)
	result.Marshal(p)
	parsedResult, err := UnmarshalInitializeResult(codec.NewReader(p.Bytes(), consts.NetworkSizeLimit))
	require.NoError(err)
	require.Equal(result, parsedResult)
}

func BenchmarkInitialize(b *testing.B) {
	addr, bump := canonicalCounter(b)
	benchmark := &chaintest.ActionBenchmark{
		Name:   "InitializeBenchmark",
		Actor:  payer,
		Action: &Initialize{Counter: addr},
		Rules:  chaintest.NewRules(programID),
		CreateState: func() state.Mutable {
			return fundedStore(b)
		},
		ExpectedOutputs: &InitializeResult{Count: 0, Bump: bump},
	}

	benchmark.Run(context.Background(), b)
}
