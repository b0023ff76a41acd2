// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		b      string
		err    error
		verify func(*require.Assertions, *Config)
	}{
		{
			name: "defaults",
			verify: func(require *require.Assertions, c *Config) {
				require.Equal(logging.Info, c.LogLevel)
				require.Equal(PebbleBackend, c.DatabaseBackend)
				require.False(c.Trace.Enabled)
				require.False(c.GetContinuousProfilerConfig().Enabled)
			},
		},
		{
			name: "overrides",
			b:    `{"logLevel":"debug","databaseBackend":"bolt","httpAddress":":8080","continuousProfilerDir":"/tmp/prof"}`,
			verify: func(require *require.Assertions, c *Config) {
				require.Equal(logging.Debug, c.LogLevel)
				require.Equal(BoltBackend, c.DatabaseBackend)
				require.Equal(":8080", c.HTTPAddress)
				require.True(c.GetContinuousProfilerConfig().Enabled)
				require.Equal("/tmp/prof", c.GetContinuousProfilerConfig().Dir)
			},
		},
		{
			name: "unknown backend",
			b:    `{"databaseBackend":"leveldb"}`,
			err:  ErrUnknownBackend,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			c, err := New([]byte(tt.b))
			require.ErrorIs(err, tt.err)
			if tt.verify != nil {
				tt.verify(require, c)
			}
		})
	}
}
