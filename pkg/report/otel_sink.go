package report

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"
)

// OtelConfig configures an OtelSink.
type OtelConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Protocol       string // "grpc" or "http/protobuf"
	Insecure       bool
	Headers        map[string]string
}

// ShutdownFunc flushes and closes an OtelSink's exporter.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// OtelSink emits one OTel span per algorithm run plus periodic span
// events, and an Int64Counter for definitions/coincidences: a structured,
// externally-supplied progress sink.
type OtelSink struct {
	tracer     trace.Tracer
	definedCtr metric.Int64Counter
	killedCtr  metric.Int64Counter

	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewOtelSink builds an OtelSink from cfg, starting an OTLP trace exporter
// (gRPC or HTTP per cfg.Protocol) and registering a TracerProvider. The
// returned ShutdownFunc must be called (typically via defer) to flush and
// close the exporter.
func NewOtelSink(ctx context.Context, cfg OtelConfig) (*OtelSink, ShutdownFunc, error) {
	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, noopShutdown, err
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, noopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	meter := otel.Meter("github.com/fpsemi/semigroups")
	definedCtr, err := meter.Int64Counter("semigroups.enumeration.defined",
		metric.WithDescription("number of elements/cosets defined across enumeration runs"))
	if err != nil {
		return nil, noopShutdown, err
	}
	killedCtr, err := meter.Int64Counter("semigroups.enumeration.coincidences",
		metric.WithDescription("number of coset coincidences processed"))
	if err != nil {
		return nil, noopShutdown, err
	}

	s := &OtelSink{
		tracer:     otel.Tracer("github.com/fpsemi/semigroups"),
		definedCtr: definedCtr,
		killedCtr:  killedCtr,
		spans:      make(map[string]trace.Span),
	}
	return s, func(ctx context.Context) error { return tp.Shutdown(ctx) }, nil
}

// Report opens a span the first time it sees a given ThreadLabel, and adds
// a span event plus counter increments on every subsequent call.
func (s *OtelSink) Report(rec ProgressRecord) {
	ctx := context.Background()
	s.mu.Lock()
	span, ok := s.spans[rec.ThreadLabel]
	if !ok {
		_, span = s.tracer.Start(ctx, rec.Algorithm, trace.WithAttributes(
			attribute.String("thread", rec.ThreadLabel),
		))
		s.spans[rec.ThreadLabel] = span
	}
	s.mu.Unlock()

	span.AddEvent(rec.Message, trace.WithAttributes(
		attribute.Int("defined", rec.Defined),
		attribute.Int("active", rec.Active),
		attribute.Int("killed", rec.Killed),
		attribute.Int64("elapsed_ms", rec.Elapsed.Milliseconds()),
	))
	s.definedCtr.Add(ctx, int64(rec.Defined), metric.WithAttributes(attribute.String("algorithm", rec.Algorithm)))
	s.killedCtr.Add(ctx, int64(rec.Killed), metric.WithAttributes(attribute.String("algorithm", rec.Algorithm)))
}

// EndSpan closes the span associated with label, if any, e.g. when a
// racing strategy completes or is cancelled.
func (s *OtelSink) EndSpan(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if span, ok := s.spans[label]; ok {
		span.End()
		delete(s.spans, label)
	}
}

func buildResource(_ context.Context, cfg OtelConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	return resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
}

func createExporter(ctx context.Context, cfg OtelConfig) (*otlptrace.Exporter, error) {
	if strings.HasPrefix(strings.ToLower(cfg.Protocol), "http") {
		opts := []otlptracehttp.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}

	opts := []otlptracegrpc.Option{}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	return otlptracegrpc.New(ctx, opts...)
}
