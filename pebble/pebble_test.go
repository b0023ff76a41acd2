// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const batchSize = 10_000

func randBytes() []byte {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func TestCommitAndGet(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	dir := t.TempDir()
	db, err := New(dir, NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)

	_, err = db.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Commit(ctx, map[string]maybe.Maybe[[]byte]{
		"a": maybe.Some([]byte{1}),
		"b": maybe.Some([]byte{2}),
	}))
	v, err := db.GetValue(ctx, []byte("a"))
	require.NoError(err)
	require.Equal([]byte{1}, v)

	require.NoError(db.Commit(ctx, map[string]maybe.Maybe[[]byte]{
		"a": maybe.Nothing[[]byte](),
		"b": maybe.Some([]byte{3}),
	}))
	_, err = db.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	require.NoError(db.Close())

	// Changes survive a reopen
	db, err = New(dir, NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)
	v, err = db.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.Equal([]byte{3}, v)
	require.NoError(db.Close())
}

func TestDuplicateMetrics(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	db, err := New(t.TempDir(), NewDefaultConfig(), reg)
	require.NoError(err)
	defer db.Close()

	_, err = New(t.TempDir(), NewDefaultConfig(), reg)
	require.Error(err)
}

func TestMetricsUpdate(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	db, err := New(t.TempDir(), NewDefaultConfig(), reg)
	require.NoError(err)
	defer db.Close()

	pm := db.db.Metrics()
	pm.Table.ObsoleteCount = 7
	db.metrics.update(pm)

	require.Equal(7.0, testutil.ToFloat64(db.metrics.samples[2].gauge))
	count, err := testutil.GatherAndCount(reg, namespace+"_obsolete_tables")
	require.NoError(err)
	require.Equal(1, count)
}

func BenchmarkCommit(b *testing.B) {
	for _, sync := range []bool{false, true} {
		b.Run(fmt.Sprintf("sync=%t", sync), func(b *testing.B) {
			// Setup DB
			b.StopTimer()
			cfg := NewDefaultConfig()
			cfg.Sync = sync
			db, err := New(b.TempDir(), cfg, prometheus.NewRegistry())
			if err != nil {
				b.Fatal(err)
			}

			// Setup keys
			changes := make(map[string]maybe.Maybe[[]byte], batchSize)
			for i := 0; i < batchSize; i++ {
				changes[string(randBytes())] = maybe.Some(randBytes())
			}

			b.StartTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if err := db.Commit(context.Background(), changes); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()

			if err := db.Close(); err != nil {
				b.Fatal(err)
			}
		})
	}
}
