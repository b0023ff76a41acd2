// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

type testTx struct {
	id     ids.ID
	expiry int64
}

func (tx *testTx) ID() ids.ID    { return tx.id }
func (tx *testTx) Expiry() int64 { return tx.expiry }

func TestEMapEmpty(t *testing.T) {
	require := require.New(t)
	e := NewEMap[*testTx]()
	require.Zero(e.Len())
	require.Empty(e.SetMin(1_000_000))
	require.False(e.Any([]*testTx{{id: ids.GenerateTestID()}}))
}

func TestEMapEvictsBeforeMin(t *testing.T) {
	require := require.New(t)
	e := NewEMap[*testTx]()

	tx := &testTx{id: ids.GenerateTestID(), expiry: 0}
	e.Add([]*testTx{tx})
	require.True(e.Any([]*testTx{tx}))
	require.Empty(e.SetMin(0))
	require.Equal([]ids.ID{tx.id}, e.SetMin(1))
	require.False(e.Any([]*testTx{tx}))
}

func TestEMapKeepsFirstExpiry(t *testing.T) {
	require := require.New(t)
	e := NewEMap[*testTx]()

	id := ids.GenerateTestID()
	e.Add([]*testTx{{id: id, expiry: 1000}})
	e.Add([]*testTx{{id: id, expiry: 9000}})
	require.Equal(1, e.Len())
	require.Equal([]ids.ID{id}, e.SetMin(1001))
	require.Zero(e.Len())
}

func TestEMapSetMinOrder(t *testing.T) {
	require := require.New(t)
	e := NewEMap[*testTx]()

	txs := []*testTx{
		{id: ids.GenerateTestID(), expiry: 5000},
		{id: ids.GenerateTestID(), expiry: 1000},
		{id: ids.GenerateTestID(), expiry: 3000},
	}
	e.Add(txs)
	require.Equal(3, e.Len())

	require.Equal([]ids.ID{txs[1].id}, e.SetMin(3000))
	require.False(e.Any(txs[1:2]))
	require.True(e.Any(txs[2:3]))

	require.Equal([]ids.ID{txs[2].id, txs[0].id}, e.SetMin(10_000))
	require.Zero(e.Len())
}
