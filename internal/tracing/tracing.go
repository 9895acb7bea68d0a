// Package tracing wraps generation runs in OpenTelemetry spans.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/sketchwire/makereal")

// RunInfo carries the span attributes of one generation run.
type RunInfo struct {
	TargetID    string
	Model       string
	SourceCount int
	// PriorMarkup marks a refinement of an earlier generation.
	PriorMarkup bool
}

type runSpan struct {
	info      RunInfo
	startTime time.Time
	span      trace.Span
}

// TraceRun executes fn inside a span covering one extract-to-place run.
func TraceRun(ctx context.Context, info RunInfo, fn func(context.Context) error) error {
	ctx, span := newRunSpan(ctx, info)
	defer span.onEnd()

	if err := fn(ctx); err != nil {
		span.onError(err)
		return err
	}
	return nil
}

func newRunSpan(ctx context.Context, info RunInfo) (context.Context, *runSpan) {
	spanCtx, otelSpan := tracer.Start(ctx, "makereal.generate")
	return spanCtx, &runSpan{
		info:      info,
		startTime: time.Now(),
		span:      otelSpan,
	}
}

func (s *runSpan) onError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *runSpan) onEnd() {
	s.span.SetAttributes(
		attribute.String("makereal.target_id", s.info.TargetID),
		attribute.String("gen_ai.request.model", s.info.Model),
		attribute.Int("makereal.source_count", s.info.SourceCount),
		attribute.Bool("makereal.prior_markup", s.info.PriorMarkup),
		attribute.Float64("makereal.duration_seconds", time.Since(s.startTime).Seconds()),
	)
	s.span.End()
}
