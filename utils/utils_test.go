// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnixRMilli(t *testing.T) {
	require := require.New(t)

	require.Equal(int64(12_000), UnixRMilli(12_345, 0))
	require.Equal(int64(72_000), UnixRMilli(12_345, 60_000))

	now := UnixRMilli(-1, 0)
	require.Zero(now % 1000)
	require.Positive(now)
}

func TestToID(t *testing.T) {
	require := require.New(t)

	a := ToID([]byte("a"))
	require.Equal(a, ToID([]byte("a")))
	require.NotEqual(a, ToID([]byte("b")))
}

func TestFormatBalance(t *testing.T) {
	require := require.New(t)

	require.Equal("0.001009200", FormatBalance(1_009_200))
	require.Equal("1.000000000", FormatBalance(1_000_000_000))
}

func TestInitSubDirectory(t *testing.T) {
	require := require.New(t)

	root := t.TempDir()
	p, err := InitSubDirectory(root, "db")
	require.NoError(err)
	require.Equal(filepath.Join(root, "db"), p)
	require.DirExists(p)
}
