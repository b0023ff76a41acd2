// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumChunks(t *testing.T) {
	tests := []struct {
		size   int
		chunks uint16
	}{
		{size: 0, chunks: 0},
		{size: 1, chunks: 1},
		{size: 63, chunks: 1},
		{size: 64, chunks: 2},
		{size: 200, chunks: 4},
	}
	for _, tt := range tests {
		chunks, ok := NumChunks(make([]byte, tt.size))
		require.True(t, ok)
		require.Equal(t, tt.chunks, chunks, "size=%d", tt.size)
	}
}

func TestEncodeVerify(t *testing.T) {
	require := require.New(t)

	key := EncodeChunks([]byte{0, 1, 2}, 2)
	require.True(Valid(key))
	chunks, ok := MaxChunks(key)
	require.True(ok)
	require.Equal(uint16(2), chunks)

	require.True(VerifyValue(key, make([]byte, 127)))
	require.False(VerifyValue(key, make([]byte, 128)))

	encoded, ok := Encode([]byte{9}, 100)
	require.True(ok)
	require.Equal([]byte{9, 0, 2}, encoded)
}

func TestMaxChunksShortKey(t *testing.T) {
	require := require.New(t)

	require.False(Valid([]byte{1}))
	_, ok := MaxChunks([]byte{1})
	require.False(ok)
	require.False(VerifyValue([]byte{1}, nil))
}
