// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/chain/chaintest"
	"github.com/ava-labs/countervm/codec"
)

const now int64 = 1_700_000_000_000

func TestPreExecute(t *testing.T) {
	rules := chaintest.NewRules(codec.Address{0x01})
	base := &chain.Base{Timestamp: now + 10_000, ChainID: rules.ChainID}

	tests := []struct {
		name    string
		actions int
		err     error
	}{
		{name: "no actions", actions: 0, err: chain.ErrNoActions},
		{name: "one action", actions: 1},
		{name: "at limit", actions: int(rules.MaxActionsPerTx)},
		{name: "over limit", actions: int(rules.MaxActionsPerTx) + 1, err: chain.ErrTooManyActions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := chain.NewTx(base, make([]chain.Action, tt.actions))
			require.ErrorIs(t, tx.PreExecute(rules, now), tt.err)
		})
	}
}
