// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"math"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/pda"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"

	ginkgo "github.com/onsi/ginkgo/v2"
)

func TestScenario(t *testing.T) {
	ginkgo.RunSpecs(t, "countervm scenario test suite")
}

var _ = ginkgo.Describe("[Counter]", func() {
	var (
		ctx = context.Background()
		env *testEnv
	)

	ginkgo.BeforeEach(func() {
		env = newTestVM(ginkgo.GinkgoT(), state.NewAvalancheDB(memdb.New()), newFactory(ginkgo.GinkgoT()))
	})

	submit := func(acts ...chain.Action) *chain.Result {
		require := require.New(ginkgo.GinkgoT())
		result, err := env.vm.Submit(ctx, env.tx(ginkgo.GinkgoT(), env.factory, acts...))
		require.NoError(err)
		return result
	}

	output := func(result *chain.Result) chain.Output {
		require := require.New(ginkgo.GinkgoT())
		require.True(result.Success, result.Error)
		require.Len(result.Outputs, 1)
		out, err := chain.UnmarshalOutput(result.Outputs[0], Parser)
		require.NoError(err)
		return out
	}

	requireCount := func(count uint64) {
		require := require.New(ginkgo.GinkgoT())
		c, exists, err := env.vm.GetCounter(ctx)
		require.NoError(err)
		require.True(exists)
		require.Equal(count, c.Count)
	}

	ginkgo.It("initializes, increments and rejects a second initialize", func() {
		require := require.New(ginkgo.GinkgoT())
		addr, bump := env.vm.CounterAddress()

		canonical, canonicalBump, err := pda.FindProgramAddress(
			[][]byte{[]byte(consts.CounterSeed)},
			env.vm.Rules().GetProgramID(),
		)
		require.NoError(err)
		require.Equal(canonical, addr)
		require.Equal(canonicalBump, bump)

		result := submit(&actions.Initialize{Counter: addr})
		require.Equal(&actions.InitializeResult{Count: 0, Bump: bump}, output(result))
		requireCount(0)

		result = submit(&actions.Increment{Counter: addr})
		require.Equal(&actions.IncrementResult{Count: 1}, output(result))
		require.Equal([]string{"Previous counter: 0", "Counter incremented! Current count: 1"}, result.Logs)

		result = submit(&actions.Increment{Counter: addr})
		require.Equal(&actions.IncrementResult{Count: 2}, output(result))

		result = submit(&actions.Initialize{Counter: addr})
		require.False(result.Success)
		require.Contains(result.Error, storage.ErrAccountAlreadyInitialized.Error())
		requireCount(2)

		c, _, err := env.vm.GetCounter(ctx)
		require.NoError(err)
		require.Equal(bump, c.Bump)
	})

	ginkgo.It("rejects an address derived from the wrong bump", func() {
		require := require.New(ginkgo.GinkgoT())
		addr, bump := env.vm.CounterAddress()
		require.NotNil(output(submit(&actions.Initialize{Counter: addr})))

		var wrong chain.Action
		for b := int(bump) - 1; b > 0; b-- {
			wrongAddr, err := pda.CreateProgramAddress(pda.CounterSeeds(consts.CounterSeed, uint8(b)), env.vm.Rules().GetProgramID())
			if err == nil {
				wrong = &actions.Increment{Counter: wrongAddr}
				break
			}
		}
		require.NotNil(wrong)

		result := submit(wrong)
		require.False(result.Success)
		require.Contains(result.Error, actions.ErrConstraintSeeds.Error())
		requireCount(0)
	})

	ginkgo.It("aborts an overflowing increment", func() {
		require := require.New(ginkgo.GinkgoT())
		addr, bump := env.vm.CounterAddress()
		require.NotNil(output(submit(&actions.Initialize{Counter: addr})))

		// Move the stored count to the maximum.
		data, err := storage.EncodeCounter(&storage.Counter{Count: math.MaxUint64, Bump: bump})
		require.NoError(err)
		minBalance, err := env.vm.Rules().GetRent().MinimumBalance(len(data))
		require.NoError(err)
		account := &storage.Account{Lamports: minBalance, Owner: env.vm.Rules().GetProgramID(), Data: data}
		require.NoError(env.db.Commit(ctx, map[string]maybe.Maybe[[]byte]{
			string(storage.AccountKey(addr)): maybe.Some(account.Marshal()),
		}))

		result := submit(&actions.Increment{Counter: addr})
		require.False(result.Success)
		require.Contains(result.Error, actions.ErrCounterOverflow.Error())
		require.Equal([]string{"Previous counter: 18446744073709551615"}, result.Logs)
		requireCount(math.MaxUint64)
	})
})
