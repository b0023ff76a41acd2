// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrAccountAlreadyInitialized    = errors.New("account already initialized")
	ErrAccountNotInitialized        = errors.New("account not initialized")
	ErrAccountOwnedByWrongProgram   = errors.New("account owned by a different program")
	ErrAccountDiscriminatorMismatch = errors.New("account discriminator did not match")
	ErrAccountDidNotDeserialize     = errors.New("failed to deserialize the account")
	ErrInsufficientFunds            = errors.New("insufficient funds")
	ErrInvalidBalance               = errors.New("invalid balance")
	ErrInvalidAccount               = errors.New("invalid account encoding")
)
