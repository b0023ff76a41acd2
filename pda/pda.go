// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pda derives program-owned addresses. A derived address is the
// sha256 of its seeds, the owning program and a fixed marker, and is never a
// valid ed25519 public key, so no private key can sign for it.
package pda

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/oasisprotocol/curve25519-voi/curve"

	"github.com/ava-labs/countervm/codec"
)

const (
	MaxSeeds   = 16
	MaxSeedLen = 32

	marker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("length of the seed is too long for address generation")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
)

// CreateProgramAddress derives the address of [seeds] under [programID].
// It fails with [ErrInvalidSeeds] when the hash lands on the curve.
func CreateProgramAddress(seeds [][]byte, programID codec.Address) (codec.Address, error) {
	if len(seeds) > MaxSeeds {
		return codec.EmptyAddress, fmt.Errorf("%w: seeds=%d max=%d", ErrMaxSeedLengthExceeded, len(seeds), MaxSeeds)
	}
	size := codec.AddressLen + len(marker)
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return codec.EmptyAddress, fmt.Errorf("%w: len=%d max=%d", ErrMaxSeedLengthExceeded, len(seed), MaxSeedLen)
		}
		size += len(seed)
	}

	preimage := make([]byte, 0, size)
	for _, seed := range seeds {
		preimage = append(preimage, seed...)
	}
	preimage = append(preimage, programID[:]...)
	preimage = append(preimage, marker...)

	addr := codec.Address(hashing.ComputeHash256Array(preimage))
	if OnCurve(addr) {
		return codec.EmptyAddress, ErrInvalidSeeds
	}
	return addr, nil
}

// FindProgramAddress searches bumps from 255 down to 1 and returns the first
// one whose derived address is off the curve (the canonical bump).
func FindProgramAddress(seeds [][]byte, programID codec.Address) (codec.Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.Is(err, ErrInvalidSeeds):
			continue
		default:
			return codec.EmptyAddress, 0, err
		}
	}
	return codec.EmptyAddress, 0, ErrNoViableBump
}

// OnCurve reports whether [addr] decodes to an ed25519 curve point.
func OnCurve(addr codec.Address) bool {
	var compressed curve.CompressedEdwardsY
	if _, err := compressed.SetBytes(addr[:]); err != nil {
		return false
	}
	var p curve.EdwardsPoint
	_, err := p.SetCompressedY(&compressed)
	return err == nil
}

// CounterSeeds returns the seeds of the counter record for [bump].
func CounterSeeds(label string, bump uint8) [][]byte {
	return [][]byte{[]byte(label), {bump}}
}
