// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/countervm/boltdb"
	"github.com/ava-labs/countervm/config"
	"github.com/ava-labs/countervm/pebble"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/utils"
)

func openDatabase(cfg *config.Config, reg prometheus.Registerer) (state.Database, error) {
	switch cfg.DatabaseBackend {
	case config.MemoryBackend:
		return state.NewAvalancheDB(memdb.New()), nil
	case config.PebbleBackend:
		dir, err := utils.InitSubDirectory(cfg.DatabaseDir, config.PebbleBackend)
		if err != nil {
			return nil, err
		}
		return pebble.New(dir, cfg.Pebble, reg)
	case config.BoltBackend:
		dir, err := utils.InitSubDirectory(cfg.DatabaseDir, config.BoltBackend)
		if err != nil {
			return nil, err
		}
		return boltdb.New(filepath.Join(dir, "state.db"), perms.ReadWrite)
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBackend, cfg.DatabaseBackend)
	}
}
