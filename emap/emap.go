// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/heap"
)

// Item is anything with an ID that stops being valid after Expiry.
type Item interface {
	ID() ids.ID
	Expiry() int64
}

// EMap remembers executed transaction IDs until their expiry passes. A
// transaction whose ID is still remembered is a replay.
type EMap[T Item] struct {
	mu sync.RWMutex

	// ID -> expiry, ordered by earliest expiry.
	expiries heap.Map[ids.ID, int64]
}

func NewEMap[T Item]() *EMap[T] {
	return &EMap[T]{
		expiries: heap.NewMap[ids.ID, int64](func(a, b int64) bool {
			return a < b
		}),
	}
}

// Add remembers [items]. The first expiry recorded for an ID is kept.
func (e *EMap[T]) Add(items []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range items {
		id := item.ID()
		if e.expiries.Contains(id) {
			continue
		}
		e.expiries.Push(id, item.Expiry())
	}
}

// SetMin forgets every item that expired before [t] and returns their IDs in
// expiry order.
func (e *EMap[T]) SetMin(t int64) []ids.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	var evicted []ids.ID
	for {
		_, expiry, ok := e.expiries.Peek()
		if !ok || expiry >= t {
			return evicted
		}
		id, _, _ := e.expiries.Pop()
		evicted = append(evicted, id)
	}
}

// Any reports whether any of [items] is remembered.
func (e *EMap[T]) Any(items []T) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, item := range items {
		if e.expiries.Contains(item.ID()) {
			return true
		}
	}
	return false
}

func (e *EMap[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.expiries.Len()
}
