// Package tracing owns the process-wide OTel tracer provider. Until Setup
// installs an exporter every tracer is a no-op.
package tracing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Attribute keys shared by the HTTP middleware and the remote store client.
const (
	BoardIDKey  = attribute.Key("devboard.board_id")
	TaskIDKey   = attribute.Key("devboard.task_id")
	ColumnIDKey = attribute.Key("devboard.column_id")
)

// Options configures the exporter.
type Options struct {
	ServiceName string
	// Endpoint is the OTLP/HTTP collector, with or without scheme. Empty
	// disables tracing.
	Endpoint string
	// SampleRatio is the fraction of root spans kept. Child spans follow
	// their parent.
	SampleRatio float64
}

// FromEnv reads OTEL_EXPORTER_OTLP_ENDPOINT and OTEL_TRACES_SAMPLER_ARG.
func FromEnv(service string) Options {
	ratio := 1.0
	if v, err := strconv.ParseFloat(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 64); err == nil {
		ratio = v
	}
	return Options{
		ServiceName: service,
		Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SampleRatio: ratio,
	}
}

var (
	mu       sync.RWMutex
	provider trace.TracerProvider = noop.NewTracerProvider()
	sdk      *sdktrace.TracerProvider
)

// Setup installs a batching OTLP exporter. It reports whether tracing is
// enabled; an empty endpoint leaves the no-op provider in place.
func Setup(ctx context.Context, opts Options) (bool, error) {
	if opts.Endpoint == "" {
		return false, nil
	}
	secure := strings.HasPrefix(opts.Endpoint, "https://")
	endpoint := strings.TrimPrefix(strings.TrimPrefix(opts.Endpoint, "https://"), "http://")

	clientOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if !secure {
		clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, clientOpts...)
	if err != nil {
		return false, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(semconv.ServiceName(opts.ServiceName)))
	if err != nil {
		res = resource.NewSchemaless(semconv.ServiceName(opts.ServiceName))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	)

	mu.Lock()
	sdk, provider = tp, tp
	mu.Unlock()
	otel.SetTracerProvider(tp)
	return true, nil
}

// Tracer returns a named tracer from the current provider.
func Tracer(name string) trace.Tracer {
	mu.RLock()
	defer mu.RUnlock()
	return provider.Tracer(name)
}

// BoardAttributes tags a span with the board it touched.
func BoardAttributes(boardID int64) []attribute.KeyValue {
	if boardID == 0 {
		return nil
	}
	return []attribute.KeyValue{BoardIDKey.Int64(boardID)}
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	mu.RLock()
	tp := sdk
	mu.RUnlock()
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}
