// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"bytes"
	"context"

	"github.com/ava-labs/avalanchego/database"
	"golang.org/x/exp/maps"

	"github.com/ava-labs/countervm/state"
)

var _ state.Mutable = Store(nil)

// Store is a map backed [state.Mutable] for action tests. Values are copied
// in both directions so an action can never alias what the test holds.
type Store map[string][]byte

func NewStore() Store {
	return Store{}
}

func (s Store) GetValue(_ context.Context, key []byte) ([]byte, error) {
	v, ok := s[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (s Store) Insert(_ context.Context, key []byte, value []byte) error {
	s[string(key)] = bytes.Clone(value)
	return nil
}

func (s Store) Remove(_ context.Context, key []byte) error {
	delete(s, string(key))
	return nil
}

// Clone returns an independent copy of [s].
func (s Store) Clone() Store {
	return maps.Clone(s)
}

// Equal reports whether [s] and [o] hold the same keys and values.
func (s Store) Equal(o Store) bool {
	return maps.EqualFunc(s, o, bytes.Equal)
}
