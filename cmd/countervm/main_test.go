// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/utils/maybe"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/config"
)

func TestReadGenesisChainID(t *testing.T) {
	require := require.New(t)

	cfg, err := config.New(nil)
	require.NoError(err)
	_, defaultID, err := readGenesis(cfg)
	require.NoError(err)

	file := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(os.WriteFile(file, []byte(`{"validityWindow":30000}`), 0o600))
	cfg.GenesisFile = file
	g, fileID, err := readGenesis(cfg)
	require.NoError(err)
	require.Equal(int64(30000), g.ValidityWindow)
	require.NotEqual(defaultID, fileID)

	// The network is part of the chain ID
	cfg.NetworkID++
	_, otherNetworkID, err := readGenesis(cfg)
	require.NoError(err)
	require.NotEqual(fileID, otherNetworkID)
}

func TestOpenDatabase(t *testing.T) {
	for _, backend := range []string{config.MemoryBackend, config.PebbleBackend, config.BoltBackend} {
		t.Run(backend, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			cfg, err := config.New(nil)
			require.NoError(err)
			cfg.DatabaseBackend = backend
			cfg.DatabaseDir = t.TempDir()

			db, err := openDatabase(cfg, prometheus.NewRegistry())
			require.NoError(err)
			require.NoError(db.Commit(ctx, map[string]maybe.Maybe[[]byte]{
				"key": maybe.Some([]byte("value")),
			}))
			v, err := db.GetValue(ctx, []byte("key"))
			require.NoError(err)
			require.Equal([]byte("value"), v)
			require.NoError(db.Close())
		})
	}
}
