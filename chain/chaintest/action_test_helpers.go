// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/state"
)

var ErrUndeclaredAccess = errors.New("key accessed without declared permission")

// scoped holds an action to the keys it declared in StateKeys, as the vm
// does.
type scoped struct {
	state.Mutable
	keys state.Keys
}

func (s *scoped) check(key []byte, perm state.Permissions) error {
	if !s.keys[string(key)].Has(perm) {
		return ErrUndeclaredAccess
	}
	return nil
}

func (s *scoped) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if err := s.check(key, state.Read); err != nil {
		return nil, err
	}
	return s.Mutable.GetValue(ctx, key)
}

func (s *scoped) Insert(ctx context.Context, key []byte, value []byte) error {
	perm := state.Write
	if _, err := s.Mutable.GetValue(ctx, key); errors.Is(err, database.ErrNotFound) {
		perm = state.Allocate
	}
	if err := s.check(key, perm); err != nil {
		return err
	}
	return s.Mutable.Insert(ctx, key, value)
}

func (s *scoped) Remove(ctx context.Context, key []byte) error {
	if err := s.check(key, state.Write); err != nil {
		return err
	}
	return s.Mutable.Remove(ctx, key)
}

// ActionTest executes [Action] once against [State] as [Actor]. Nil
// [ExpectedLogs] skips the log check and an empty slice requires no logs.
type ActionTest struct {
	Name string

	Action chain.Action
	Rules  chain.Rules
	State  state.Mutable
	Actor  codec.Address

	ExpectedOutputs chain.Output
	ExpectedErr     error
	ExpectedLogs    []string

	Assertion func(context.Context, *testing.T, state.Mutable)
}

func (test *ActionTest) Run(ctx context.Context, t *testing.T) {
	t.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		logs := &chain.Logs{}
		view := &scoped{Mutable: test.State, keys: test.Action.StateKeys(test.Actor)}
		output, err := test.Action.Execute(ctx, test.Rules, view, test.Actor, logs)
		require.ErrorIs(err, test.ExpectedErr)
		require.Equal(test.ExpectedOutputs, output)
		if test.ExpectedLogs != nil {
			require.Equal(test.ExpectedLogs, append([]string{}, logs.Lines()...))
		}
		if test.Assertion != nil {
			test.Assertion(ctx, t, test.State)
		}
	})
}

// ActionBenchmark executes [Action] b.N times, each against a fresh state
// from [CreateState] so runs do not observe each other.
type ActionBenchmark struct {
	Name   string
	Action chain.Action

	Rules       chain.Rules
	CreateState func() state.Mutable
	Actor       codec.Address

	ExpectedOutputs chain.Output
	ExpectedErr     error

	Assertion func(context.Context, *testing.B, state.Mutable)
}

func (test *ActionBenchmark) Run(ctx context.Context, b *testing.B) {
	require := require.New(b)

	states := make([]state.Mutable, b.N)
	for i := range states {
		states[i] = test.CreateState()
	}

	b.ResetTimer()
	for _, s := range states {
		output, err := test.Action.Execute(ctx, test.Rules, s, test.Actor, &chain.Logs{})
		require.ErrorIs(err, test.ExpectedErr)
		require.Equal(test.ExpectedOutputs, output)
	}
	b.StopTimer()

	if test.Assertion != nil {
		for _, s := range states {
			test.Assertion(ctx, b, s)
		}
	}
}
