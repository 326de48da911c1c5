package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pthm/hxsite/lib/async"
)

// TracerName is the instrumentation name used for spans.
const TracerName = "github.com/pthm/hxsite"

// Span names.
const (
	SpanSearch    = "gallery.search"
	SpanSubscribe = "newsletter.subscribe"
)

type instrumentedSource struct {
	next    async.RemoteDataSource
	metrics *Metrics
	tracer  trace.Tracer
}

// InstrumentSource wraps src so each search is traced and timed. A nil
// tracer uses the global provider.
func InstrumentSource(src async.RemoteDataSource, m *Metrics, tracer trace.Tracer) async.RemoteDataSource {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &instrumentedSource{next: src, metrics: m, tracer: tracer}
}

func (s *instrumentedSource) Search(ctx context.Context, q async.RemoteQuery) ([]async.RawRecord, error) {
	ctx, span := s.tracer.Start(ctx, SpanSearch,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gallery.keyword", q.Keyword),
			attribute.Int("gallery.page_size", q.PageSize),
		),
	)
	defer span.End()

	start := time.Now()
	records, err := s.next.Search(ctx, q)
	s.metrics.observeRemote("search", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("gallery.results", len(records)))
	return records, nil
}

type instrumentedSink struct {
	next    async.SubscriptionSink
	metrics *Metrics
	tracer  trace.Tracer
}

// InstrumentSink wraps sink so each write is traced and timed. The address
// itself is never put on the span.
func InstrumentSink(sink async.SubscriptionSink, m *Metrics, tracer trace.Tracer) async.SubscriptionSink {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &instrumentedSink{next: sink, metrics: m, tracer: tracer}
}

func (s *instrumentedSink) Subscribe(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, SpanSubscribe, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	err := s.next.Subscribe(ctx, email)
	s.metrics.observeRemote("subscribe", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
