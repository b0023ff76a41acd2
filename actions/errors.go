// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	// ErrConstraintSeeds is returned when the counter address does not derive
	// from the counter seed and its bump.
	ErrConstraintSeeds = errors.New("a seeds constraint was violated")
	ErrCounterOverflow = errors.New("counter overflow")
)
