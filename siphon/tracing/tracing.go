// Package tracing records engine traffic as OpenTelemetry spans.
package tracing

import (
	"context"
	"sync/atomic"

	"github.com/on-the-ground/siphon_go/shared/helper"
	"github.com/on-the-ground/siphon_go/siphon"
	"github.com/on-the-ground/siphon_go/siphon/stream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/on-the-ground/siphon_go/siphon"

// Attribute keys set on every span.
const (
	TagKey = attribute.Key("siphon.tag")
	SeqKey = attribute.Key("siphon.seq")
)

// Setup registers a global tracer provider exporting to endpoint over
// OTLP/HTTP. With an empty endpoint it registers nothing and returns a no-op
// shutdown. The returned shutdown flushes pending spans.
func Setup(ctx context.Context, serviceName, endpoint string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// Tracer returns the tracer of the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Changes records a "siphon.change" span for every change.
func Changes[C any](tracer trace.Tracer) siphon.Interceptor[C] {
	return intercept[C](tracer, "siphon.change")
}

// Actions records a "siphon.action" span for every action.
func Actions[A any](tracer trace.Tracer) siphon.Interceptor[A] {
	return intercept[A](tracer, "siphon.action")
}

// States records a "siphon.state" span for every committed state.
func States[S any](tracer trace.Tracer) siphon.Interceptor[S] {
	return intercept[S](tracer, "siphon.state")
}

func intercept[T any](tracer trace.Tracer, name string) siphon.Interceptor[T] {
	if tracer == nil {
		tracer = Tracer()
	}
	return func(ctx context.Context, in <-chan T) <-chan T {
		var seq atomic.Int64
		return stream.Tap(ctx, in, func(v T) {
			_, span := tracer.Start(ctx, name,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					TagKey.String(helper.TypeName(v)),
					SeqKey.Int64(seq.Add(1)),
				),
			)
			span.End()
		})
	}
}
