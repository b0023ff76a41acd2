// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen   = 1
	BoolLen   = 1
	IDLen     = 32
	IntLen    = 4
	Uint8Len  = 1
	Uint16Len = 2
	Uint64Len = 8
	Int64Len  = 8

	MaxUint8  = ^uint8(0)
	MaxUint16 = ^uint16(0)
	MaxUint   = ^uint(0)
	MaxInt    = int(MaxUint >> 1)
	MaxUint64 = ^uint64(0)

	MillisecondsPerSecond = 1000

	// NetworkSizeLimit bounds any transaction or result we will parse.
	NetworkSizeLimit = 2_044_723 // 1.95 MiB
)

// Name is used for the JSON-RPC service, metrics namespace and default
// directories.
const (
	Name    = "countervm"
	Version = "v0.0.1"
)

// Action and auth type IDs.
const (
	InitializeID uint8 = 0
	IncrementID  uint8 = 1

	ED25519ID uint8 = 0
)

// CounterSeed is the fixed label the counter address is derived from.
const CounterSeed = "counter"

// DefaultProgramID owns the counter record unless genesis names another
// program.
const DefaultProgramID = "7FBBdRPMWb7eE5pRdpi3GRCNjxwFNwv33BGz3PNHb4bt"
