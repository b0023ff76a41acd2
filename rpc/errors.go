// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "errors"

var (
	ErrTxFailed       = errors.New("transaction failed")
	ErrMessageMissing = errors.New("message missing")
)
