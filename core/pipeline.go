package core

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/orbital-tracker/internal/logging"
	"github.com/signalsfoundry/orbital-tracker/model"
)

// DefaultBatchSize bounds per-window work when the caller does not choose a
// window size.
const DefaultBatchSize = 50

// Drop reasons used for diagnostics and metrics labels. Failed records are
// dropped from the output, never surfaced as partial results or errors.
const (
	dropUnresolvable    = "unresolvable"
	dropUnpropagatable  = "unpropagatable"
	dropInvalidGeodetic = "invalid_geodetic"
)

// ProgressFunc receives the accumulated results after each window. The
// final invocation has complete set to true.
type ProgressFunc func(objects []*model.ProcessedObject, complete bool)

// MetricsRecorder is the sink for pipeline measurements. Implemented by
// observability.TrackerCollector; a nil recorder drops everything.
type MetricsRecorder interface {
	AddProcessed(n int)
	IncDropped(reason string)
	ObservePassDuration(d time.Duration)
	SetCacheStats(entries, unresolvable int)
}

// Pipeline drives resolve, propagate, transform, and classify across a
// catalog. It is single-threaded and cooperative: batched runs hand control
// to a yield hook between windows so a large catalog never monopolizes the
// host scheduler.
type Pipeline struct {
	resolver *Resolver
	prop     Propagator
	log      logging.Logger
	metrics  MetricsRecorder
	yield    func(ctx context.Context)
	tracer   trace.Tracer
}

// PipelineOption customises a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger attaches a structured logger.
func WithLogger(log logging.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// WithYield replaces the between-windows yield hook. The default hands the
// processor to the Go scheduler; hosts with their own frame or tick
// scheduler can block here until the next scheduling slot.
func WithYield(yield func(ctx context.Context)) PipelineOption {
	return func(p *Pipeline) {
		if yield != nil {
			p.yield = yield
		}
	}
}

// NewPipeline builds a Pipeline around a resolver and the propagation
// capability the resolver's states came from.
func NewPipeline(resolver *Resolver, prop Propagator, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		resolver: resolver,
		prop:     prop,
		log:      logging.Noop(),
		yield:    func(context.Context) { runtime.Gosched() },
		tracer:   otel.Tracer("github.com/signalsfoundry/orbital-tracker/core"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessAll runs a full pass over the records in one synchronous call.
// Suitable for small catalogs; large ones should go through ProcessBatched.
// Output order follows input order, minus dropped records.
func (p *Pipeline) ProcessAll(ctx context.Context, records []*model.CatalogRecord, at time.Time) []*model.ProcessedObject {
	ctx, log := logging.WithPassLogger(ctx, p.log)
	ctx, span := p.tracer.Start(ctx, "pipeline.process_all",
		trace.WithAttributes(attribute.Int("records", len(records))))
	defer span.End()

	start := time.Now()
	objects := make([]*model.ProcessedObject, 0, len(records))
	for _, rec := range records {
		if obj := p.processRecord(ctx, rec, at); obj != nil {
			objects = append(objects, obj)
		}
	}
	p.finishPass(ctx, log, start, len(records), len(objects))
	return objects
}

// ProcessBatched runs a pass in consecutive windows of batchSize records,
// invoking onProgress with the accumulated results after each window and
// yielding between windows. The final invocation reports complete = true;
// an empty catalog produces no invocations at all.
func (p *Pipeline) ProcessBatched(ctx context.Context, records []*model.CatalogRecord, at time.Time, batchSize int, onProgress ProgressFunc) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	ctx, log := logging.WithPassLogger(ctx, p.log)
	ctx, span := p.tracer.Start(ctx, "pipeline.process_batched",
		trace.WithAttributes(
			attribute.Int("records", len(records)),
			attribute.Int("batch_size", batchSize),
		))
	defer span.End()

	start := time.Now()
	accumulated := make([]*model.ProcessedObject, 0, len(records))

	for offset := 0; offset < len(records); offset += batchSize {
		end := offset + batchSize
		if end > len(records) {
			end = len(records)
		}

		_, windowSpan := p.tracer.Start(ctx, "pipeline.window",
			trace.WithAttributes(attribute.Int("offset", offset)))
		for _, rec := range records[offset:end] {
			if obj := p.processRecord(ctx, rec, at); obj != nil {
				accumulated = append(accumulated, obj)
			}
		}
		windowSpan.End()

		complete := end == len(records)
		if onProgress != nil {
			// Cap the slice so a later window's append cannot alias
			// into what the consumer already holds.
			onProgress(accumulated[:len(accumulated):len(accumulated)], complete)
		}
		if !complete {
			p.yield(ctx)
		}
	}
	p.finishPass(ctx, log, start, len(records), len(accumulated))
}

// processRecord runs one record through the full chain. It returns nil when
// the record is dropped; all four failure classes are treated identically.
func (p *Pipeline) processRecord(ctx context.Context, rec *model.CatalogRecord, at time.Time) *model.ProcessedObject {
	resolved, ok := p.resolver.Resolve(ctx, rec)
	if !ok {
		p.drop(ctx, rec, dropUnresolvable)
		return nil
	}

	pos, vel, err := p.prop.Propagate(resolved.State, at)
	if err != nil {
		p.drop(ctx, rec, dropUnpropagatable)
		return nil
	}

	geo, ok := ToGeodetic(p.prop, pos, vel, at)
	if !ok {
		p.drop(ctx, rec, dropInvalidGeodetic)
		return nil
	}

	return &model.ProcessedObject{
		NoradID:     rec.NoradID,
		Name:        rec.Name,
		IntlDesig:   rec.IntlDesig,
		Position:    geo,
		Category:    Classify(rec.Name),
		Country:     CountryOfOrigin(rec.IntlDesig),
		ReentryRisk: ReentryRisk(geo.Altitude),
		Record:      rec,
	}
}

func (p *Pipeline) drop(ctx context.Context, rec *model.CatalogRecord, reason string) {
	if p.metrics != nil {
		p.metrics.IncDropped(reason)
	}
	id := 0
	if rec != nil {
		id = rec.NoradID
	}
	p.log.Debug(ctx, "record dropped",
		logging.Int("norad_id", id),
		logging.String("reason", reason),
	)
}

func (p *Pipeline) finishPass(ctx context.Context, log logging.Logger, start time.Time, records, produced int) {
	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.AddProcessed(produced)
		p.metrics.ObservePassDuration(elapsed)
		p.metrics.SetCacheStats(p.resolver.Stats())
	}
	log.Debug(ctx, "propagation pass finished",
		logging.Int("records", records),
		logging.Int("objects", produced),
		logging.Int("dropped", records-produced),
		logging.String("elapsed", elapsed.String()),
	)
}
