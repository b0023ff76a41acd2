// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ava-labs/countervm/chain/chaintest"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/storage"
)

const testAddr = "SeedPubey1111111111111111111111111111111111"

func TestNewDefaults(t *testing.T) {
	require := require.New(t)

	g, err := New(nil)
	require.NoError(err)
	require.Equal(consts.DefaultProgramID, g.ProgramID)

	chainID := ids.GenerateTestID()
	r := g.Rules(1, chainID)
	require.Equal(chainID, r.GetChainID())
	require.Equal(uint32(1), r.NetworkID())
	require.Equal(codec.MustParseAddress(consts.DefaultProgramID), r.GetProgramID())
	require.Equal(int64(60_000), r.GetValidityWindow())
	require.Equal(storage.DefaultRent(), r.GetRent())
}

func TestNewFormats(t *testing.T) {
	tests := []struct {
		name string
		b    string
	}{
		{
			name: "json",
			b:    `{"validityWindow":30000,"customAllocation":[{"address":"` + testAddr + `","balance":10}]}`,
		},
		{
			name: "yaml",
			b: `
validityWindow: 30000
customAllocation:
  - address: ` + testAddr + `
    balance: 10
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			g, err := New([]byte(tt.b))
			require.NoError(err)
			require.Equal(int64(30_000), g.ValidityWindow)
			require.Equal(uint8(16), g.MaxActionsPerTx)
			require.Equal([]*CustomAllocation{{Address: testAddr, Balance: 10}}, g.CustomAllocation)
		})
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name string
		b    string
		err  error
	}{
		{
			name: "program ID",
			b:    `{"programID":"nope"}`,
			err:  ErrInvalidProgramID,
		},
		{
			name: "system program",
			b:    `{"programID":"11111111111111111111111111111111"}`,
			err:  ErrInvalidProgramID,
		},
		{
			name: "validity window",
			b:    `{"validityWindow":0}`,
			err:  ErrInvalidValidityWindow,
		},
		{
			name: "max actions",
			b:    `maxActionsPerTx: 0`,
			err:  ErrInvalidMaxActions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]byte(tt.b))
			require.ErrorIs(t, err, tt.err)
		})
	}

	_, err := New([]byte("unknownField: 1"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	g, err := New([]byte(`{"customAllocation":[{"address":"` + testAddr + `","balance":7},{"address":"` + testAddr + `","balance":3}]}`))
	require.NoError(err)

	store := chaintest.NewStore()
	require.NoError(g.Load(ctx, noop.NewTracerProvider().Tracer(""), store))

	balance, err := storage.GetBalance(ctx, store, codec.MustParseAddress(testAddr))
	require.NoError(err)
	require.Equal(uint64(10), balance)

	marker, err := store.GetValue(ctx, storage.GenesisKey())
	require.NoError(err)
	supply, err := Supply(marker)
	require.NoError(err)
	require.Equal(uint64(10), supply)
}
