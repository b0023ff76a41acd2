// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace/noop"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	exportTimeout = 10 * time.Second
	// Must exceed [exportTimeout] so queued spans are flushed on close.
	shutdownTimeout = 15 * time.Second

	DefaultEndpoint = "http://localhost:9411/api/v2/spans"
)

var _ trace.Tracer = (*tracer)(nil)

type Config struct {
	Enabled bool `json:"enabled"`

	// Fraction of transactions traced, clamped to [0, 1].
	TraceSampleRate float64 `json:"traceSampleRate"`

	// Zipkin collector URL. Defaults to [DefaultEndpoint].
	Endpoint string `json:"endpoint"`

	AppName string `json:"appName"`
	Agent   string `json:"agent"`
	Version string `json:"version"`
}

// tracer is the tracer handed to the vm. [shutdown] is nil when spans are
// discarded.
type tracer struct {
	oteltrace.Tracer

	shutdown func(context.Context) error
}

func (t *tracer) Close() error {
	if t.shutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return t.shutdown(ctx)
}

// New exports sampled spans to zipkin when [cfg] enables tracing and
// discards them otherwise.
func New(cfg *Config) (trace.Tracer, error) {
	if !cfg.Enabled {
		return &tracer{Tracer: noop.NewTracerProvider().Tracer(cfg.AppName)}, nil
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	exporter, err := zipkin.New(endpoint)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithExportTimeout(exportTimeout)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.Agent),
			attribute.String("version", cfg.Version),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceSampleRate))),
	)
	return &tracer{
		Tracer:   tp.Tracer(cfg.AppName),
		shutdown: tp.Shutdown,
	}, nil
}
