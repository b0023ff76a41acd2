// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import smath "github.com/ava-labs/avalanchego/utils/math"

// Rent holds the parameters of the rent-exempt minimum balance.
type Rent struct {
	AccountStorageOverhead uint64 `json:"accountStorageOverhead" yaml:"accountStorageOverhead"`
	LamportsPerByteYear    uint64 `json:"lamportsPerByteYear" yaml:"lamportsPerByteYear"`
	ExemptionThreshold     uint64 `json:"exemptionThreshold" yaml:"exemptionThreshold"`
}

func DefaultRent() Rent {
	return Rent{
		AccountStorageOverhead: 128,
		LamportsPerByteYear:    3480,
		ExemptionThreshold:     2,
	}
}

// MinimumBalance is the balance an account holding [dataLen] bytes must
// keep.
func (r Rent) MinimumBalance(dataLen int) (uint64, error) {
	size, err := smath.Add(r.AccountStorageOverhead, uint64(dataLen))
	if err != nil {
		return 0, err
	}
	perYear, err := smath.Mul(size, r.LamportsPerByteYear)
	if err != nil {
		return 0, err
	}
	return smath.Mul(perYear, r.ExemptionThreshold)
}
