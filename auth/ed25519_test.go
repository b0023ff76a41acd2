// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/crypto"
	"github.com/ava-labs/countervm/crypto/ed25519"
)

func TestED25519SignVerify(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	factory := NewED25519Factory(priv)
	msg := []byte("msg")

	a, err := factory.Sign(msg)
	require.NoError(err)
	require.Equal(ED25519ID, a.GetTypeID())
	require.Equal(factory.Address(), a.Actor())
	require.Equal(codec.Address(priv.PublicKey()), a.Actor())
	require.NoError(a.Verify(ctx, msg))
	require.ErrorIs(a.Verify(ctx, []byte("other")), crypto.ErrInvalidSignature)
}

func TestED25519Marshal(t *testing.T) {
	require := require.New(t)

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	a, err := NewED25519Factory(priv).Sign([]byte("msg"))
	require.NoError(err)

	p := codec.NewWriter(a.Size(), consts.NetworkSizeLimit)
	a.Marshal(p)
	require.NoError(p.Err())
	require.Len(p.Bytes(), ED25519Size)

	parsed, err := UnmarshalED25519(codec.NewReader(p.Bytes(), consts.NetworkSizeLimit))
	require.NoError(err)
	require.Equal(a, parsed)

	_, err = UnmarshalED25519(codec.NewReader(p.Bytes()[:ED25519Size-1], consts.NetworkSizeLimit))
	require.Error(err)
}

func TestBatchVerifier(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	bv := NewBatchVerifier(3)
	for i := 0; i < 3; i++ {
		priv, err := ed25519.GeneratePrivateKey()
		require.NoError(err)
		msg := []byte{byte(i)}
		a, err := NewED25519Factory(priv).Sign(msg)
		require.NoError(err)
		bv.Add(msg, a)
	}
	require.NoError(bv.Verify(ctx))

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	a, err := NewED25519Factory(priv).Sign([]byte("signed"))
	require.NoError(err)
	bv.Add([]byte("tampered"), a)
	require.ErrorIs(bv.Verify(ctx), crypto.ErrInvalidSignature)
}
