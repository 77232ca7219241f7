package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is the service name reported on every span and the name of the package tracers
const ServiceName = "neo-hosting"

const defaultOTLPEndpoint = "localhost:4317"

// Options selects where spans are exported.
// Empty fields fall back to OTEL_EXPORTER and OTEL_ENDPOINT.
type Options struct {
	// Exporter is "none" (default), "console", "otlp", or "both"
	Exporter string

	// Endpoint is the OTLP gRPC endpoint (default: "localhost:4317")
	Endpoint string

	// Version is reported as service.version
	Version string
}

// Setup installs the global tracer provider.
// Spans are always collected; with exporter "none" they are simply dropped.
func Setup(ctx context.Context, opts Options) (trace.Tracer, func(context.Context) error, error) {
	opts = opts.withEnv()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceVersionKey.String(opts.Version),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporters, err := newExporters(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	for _, exporter := range exporters {
		tp.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter))
	}

	otel.SetTracerProvider(tp)

	shutdown := func(ctx context.Context) error {
		return tp.Shutdown(ctx)
	}

	return tp.Tracer(ServiceName), shutdown, nil
}

func (o Options) withEnv() Options {
	if o.Exporter == "" {
		o.Exporter = os.Getenv("OTEL_EXPORTER")
	}
	if o.Exporter == "" {
		o.Exporter = "none"
	}
	if o.Endpoint == "" {
		o.Endpoint = os.Getenv("OTEL_ENDPOINT")
	}
	if o.Endpoint == "" {
		o.Endpoint = defaultOTLPEndpoint
	}
	if o.Version == "" {
		o.Version = "dev"
	}
	return o
}

func newExporters(ctx context.Context, opts Options) ([]sdktrace.SpanExporter, error) {
	var (
		console bool
		otlp    bool
	)

	switch opts.Exporter {
	case "none":
		return nil, nil
	case "console":
		console = true
	case "otlp":
		otlp = true
	case "both":
		console, otlp = true, true
	default:
		return nil, fmt.Errorf("unknown OTEL exporter %q (want none, console, otlp or both)", opts.Exporter)
	}

	var exporters []sdktrace.SpanExporter

	if console {
		// Spans go to stderr so stdout stays reserved for command output
		consoleExporter, err := stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
			stdouttrace.WithWriter(os.Stderr),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		exporters = append(exporters, consoleExporter)
	}

	if otlp {
		otlpExporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(opts.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		exporters = append(exporters, otlpExporter)
	}

	return exporters, nil
}
