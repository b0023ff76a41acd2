// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/ava-labs/countervm/keys"
	"github.com/ava-labs/countervm/state"
)

var _ state.Mutable = (*View)(nil)

// entry undoes one write: it restores whatever the view held for [key]
// before the write, or forgets the key if the view held nothing.
type entry struct {
	key     string
	prev    maybe.Maybe[[]byte]
	hadPrev bool
}

// View is the state a single transaction executes against. Access is limited
// to the declared [state.Keys], and every write is journaled so a failed
// transaction can be unwound to any earlier [OpIndex].
type View struct {
	parent  *TState
	scope   state.Keys
	storage map[string][]byte

	pending map[string]maybe.Maybe[[]byte]
	journal []entry
}

// NewView returns a view over [scope]. [storage] holds the persisted values
// of the scoped keys that exist.
func (ts *TState) NewView(scope state.Keys, storage map[string][]byte) *View {
	return &View{
		parent:  ts,
		scope:   scope,
		storage: storage,
		pending: make(map[string]maybe.Maybe[[]byte], len(scope)),
	}
}

// OpIndex is the number of journaled writes.
func (v *View) OpIndex() int {
	return len(v.journal)
}

// Rollback undoes every write at or after [restorePoint].
func (v *View) Rollback(_ context.Context, restorePoint int) {
	for i := len(v.journal) - 1; i >= restorePoint; i-- {
		e := v.journal[i]
		if e.hadPrev {
			v.pending[e.key] = e.prev
		} else {
			delete(v.pending, e.key)
		}
	}
	v.journal = v.journal[:restorePoint]
}

func (v *View) PendingChanges() int {
	return len(v.pending)
}

func (v *View) allowed(k string, perm state.Permissions) bool {
	return v.scope[k].Has(perm)
}

// lookup resolves [k] through the view, then the parent, then storage.
func (v *View) lookup(k string) ([]byte, bool) {
	if pv, ok := v.pending[k]; ok {
		return pv.Value(), !pv.IsNothing()
	}
	if pv, changed, exists := v.parent.getChangedValue(context.Background(), k); changed {
		return pv, exists
	}
	sv, ok := v.storage[k]
	return sv, ok
}

func (v *View) record(k string, next maybe.Maybe[[]byte]) {
	prev, hadPrev := v.pending[k]
	v.journal = append(v.journal, entry{key: k, prev: prev, hadPrev: hadPrev})
	v.pending[k] = next
}

// GetValue requires Read on [key].
func (v *View) GetValue(_ context.Context, key []byte) ([]byte, error) {
	k := string(key)
	if !v.allowed(k, state.Read) {
		return nil, ErrInvalidKeyOrPermission
	}
	value, ok := v.lookup(k)
	if !ok {
		return nil, database.ErrNotFound
	}
	return value, nil
}

// Insert requires Allocate to create [key] and Write to overwrite it. The
// view takes ownership of [value].
func (v *View) Insert(_ context.Context, key []byte, value []byte) error {
	if !keys.VerifyValue(key, value) {
		return ErrInvalidKeyValue
	}
	k := string(key)
	perm := state.Allocate
	if _, exists := v.lookup(k); exists {
		perm = state.Write
	}
	if !v.allowed(k, perm) {
		return ErrInvalidKeyOrPermission
	}
	v.record(k, maybe.Some(value))
	return nil
}

// Remove requires Write on [key]. Removing a missing key does nothing.
func (v *View) Remove(_ context.Context, key []byte) error {
	k := string(key)
	if !v.allowed(k, state.Write) {
		return ErrInvalidKeyOrPermission
	}
	if _, exists := v.lookup(k); !exists {
		return nil
	}
	v.record(k, maybe.Nothing[[]byte]())
	return nil
}

// Commit hands the pending writes to the parent [TState].
func (v *View) Commit() {
	v.parent.l.Lock()
	defer v.parent.l.Unlock()

	for k, value := range v.pending {
		v.parent.changedKeys[k] = value
	}
	v.parent.ops += len(v.journal)
}
