// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledTracer(t *testing.T) {
	require := require.New(t)

	tracer, err := New(&Config{Enabled: false, AppName: "countervm"})
	require.NoError(err)

	_, span := tracer.Start(context.Background(), "test")
	require.False(span.IsRecording())
	span.End()
	require.NoError(tracer.Close())
}

func TestEnabledTracer(t *testing.T) {
	require := require.New(t)

	tracer, err := New(&Config{
		Enabled:         true,
		TraceSampleRate: 1,
		AppName:         "countervm",
		Agent:           "test",
	})
	require.NoError(err)

	_, span := tracer.Start(context.Background(), "test")
	require.True(span.IsRecording())
	span.End()
}

func TestTracerNeverSamples(t *testing.T) {
	require := require.New(t)

	tracer, err := New(&Config{
		Enabled:  true,
		Endpoint: DefaultEndpoint,
		AppName:  "countervm",
	})
	require.NoError(err)

	_, span := tracer.Start(context.Background(), "test")
	require.False(span.IsRecording())
	span.End()
}
