// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

type Option func(*VM)

// WithClock replaces the wall clock (unix milliseconds) used to check
// transaction validity windows.
func WithClock(now func() int64) Option {
	return func(vm *VM) {
		vm.now = now
	}
}
