// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/crypto/ed25519"
)

// BatchVerifier checks many signatures at once. ED25519 signatures are
// verified together; any other auth is verified on its own.
type BatchVerifier struct {
	batch   *ed25519.Batch
	pending int
	others  []func(context.Context) error
}

func NewBatchVerifier(size int) *BatchVerifier {
	return &BatchVerifier{batch: ed25519.NewBatch(size)}
}

func (b *BatchVerifier) Add(msg []byte, a chain.Auth) {
	if d, ok := a.(*ED25519); ok {
		b.batch.Add(msg, d.Signer, d.Signature)
		b.pending++
		return
	}
	b.others = append(b.others, func(ctx context.Context) error {
		return a.Verify(ctx, msg)
	})
}

// Verify returns an error if any added signature is invalid. It does not
// say which one.
func (b *BatchVerifier) Verify(ctx context.Context) error {
	if b.pending > 0 {
		if err := b.batch.Verify(); err != nil {
			return err
		}
	}
	for _, verify := range b.others {
		if err := verify(ctx); err != nil {
			return err
		}
	}
	return nil
}
