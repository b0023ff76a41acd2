// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import "errors"

var (
	ErrMissingValue     = errors.New("required value not found")
	ErrUndecodableInput = errors.New("unable to decode input as hex, or read as file path")
	ErrInvalidKeyLength = errors.New("invalid private key length")
	ErrAborted          = errors.New("aborted by user")
	ErrUnexpectedOutput = errors.New("unexpected transaction output")
)
