// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"

	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/pebble"
	"github.com/ava-labs/countervm/server"
	"github.com/ava-labs/countervm/trace"
)

const (
	PebbleBackend = "pebble"
	BoltBackend   = "bolt"
	MemoryBackend = "memory"
)

var ErrUnknownBackend = errors.New("unknown database backend")

type Config struct {
	// Logging
	LogLevel        logging.Level `json:"logLevel"`
	LogDisplayLevel logging.Level `json:"logDisplayLevel"`
	LogDir          string        `json:"logDir"`

	// Storage
	DatabaseBackend string        `json:"databaseBackend"`
	DatabaseDir     string        `json:"databaseDir"`
	Pebble          pebble.Config `json:"pebble"`

	// Chain
	NetworkID   uint32 `json:"networkID"`
	GenesisFile string `json:"genesisFile"`

	// API
	HTTPAddress          string        `json:"httpAddress"`
	HTTP                 server.Config `json:"http"`
	StreamingBacklogSize int           `json:"streamingBacklogSize"`

	// Tracing
	Trace trace.Config `json:"trace"`

	// Profiling
	ContinuousProfilerDir string `json:"continuousProfilerDir"`
}

func New(b []byte) (*Config, error) {
	c := &Config{
		LogLevel:        logging.Info,
		LogDisplayLevel: logging.Info,
		LogDir:          consts.Name + "/logs",

		DatabaseBackend: PebbleBackend,
		DatabaseDir:     consts.Name + "/db",
		Pebble:          pebble.NewDefaultConfig(),

		NetworkID: 1,

		HTTPAddress:          "127.0.0.1:9650",
		HTTP:                 server.NewDefaultConfig(),
		StreamingBacklogSize: 1_024,

		Trace: trace.Config{
			Enabled:         false,
			TraceSampleRate: 0.1,
			AppName:         consts.Name,
			Agent:           consts.Name,
			Version:         consts.Version,
		},
	}

	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, err
		}
	}
	switch c.DatabaseBackend {
	case PebbleBackend, BoltBackend, MemoryBackend:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, c.DatabaseBackend)
	}
	return c, nil
}

// GetContinuousProfilerConfig is disabled unless a directory is set.
func (c *Config) GetContinuousProfilerConfig() *profiler.Config {
	if len(c.ContinuousProfilerDir) == 0 {
		return &profiler.Config{Enabled: false}
	}
	return &profiler.Config{
		Enabled:     true,
		Dir:         c.ContinuousProfilerDir,
		Freq:        time.Minute,
		MaxNumFiles: 10,
	}
}
