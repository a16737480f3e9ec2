package traces

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ModeEnv = "COMPATGUARD_TRACE"

	tracerName = "github.com/compatguard/cli"
)

var (
	initOnce sync.Once
	shutdown = func(context.Context) error { return nil }
	initErr  error

	// stdoutWriter is where the stdout exporter writes spans.
	stdoutWriter io.Writer = os.Stderr
)

// Init installs a tracer provider according to COMPATGUARD_TRACE: "stdout"
// pretty-prints spans to stderr, "otlp" exports over OTLP/HTTP using the
// standard OTEL_EXPORTER_OTLP_* variables. Anything else leaves the no-op
// provider in place.
func Init(ctx context.Context, version string) (func(context.Context) error, error) {
	initOnce.Do(func() {
		exporter, err := newExporter(ctx, strings.ToLower(strings.TrimSpace(os.Getenv(ModeEnv))))
		if err != nil || exporter == nil {
			initErr = err
			return
		}

		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String("compatguard"),
			semconv.ServiceVersionKey.String(version),
		))
		if err != nil {
			initErr = err
			return
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdown = tp.Shutdown
	})
	return shutdown, initErr
}

func newExporter(ctx context.Context, mode string) (sdktrace.SpanExporter, error) {
	switch mode {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(stdoutWriter), stdouttrace.WithPrettyPrint())
	case "otlp":
		var opts []otlptracehttp.Option
		if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	return nil, nil
}

// TraceCommand starts a span for a CLI command. The returned func ends the
// span, recording err when non-nil.
func TraceCommand(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
