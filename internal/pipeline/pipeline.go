// Package pipeline batches lookup events from the map view and hands them to
// a BatchLoader, retrying failed writes with exponential backoff.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-risk-map/internal/domain"
	"github.com/couchcryptid/flood-risk-map/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// bufferBatches is how many full batches the recorder queues before
	// dropping new events.
	bufferBatches = 4

	// finalFlushTimeout bounds the last write after the run context ends.
	finalFlushTimeout = 5 * time.Second
)

// ErrPermanent marks a load error that no retry can fix. A BatchLoader wraps
// it to make the recorder drop the batch instead of retrying.
var ErrPermanent = errors.New("permanent load failure")

// BatchLoader writes multiple lookup events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.LookupEvent) error
}

// Recorder queues lookup events and flushes them in batches. It implements
// mapview.Recorder.
type Recorder struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	events        chan domain.LookupEvent
	batchSize     int
	flushInterval time.Duration
}

// New creates a Recorder that flushes every batchSize events or every
// flushInterval, whichever comes first.
func New(loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Recorder {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Recorder{
		loader:        loader,
		logger:        logger,
		metrics:       metrics,
		events:        make(chan domain.LookupEvent, batchSize*bufferBatches),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Record queues an event without blocking. When the buffer is full the
// event is dropped and counted.
func (r *Recorder) Record(event domain.LookupEvent) {
	select {
	case r.events <- event:
		r.metrics.EventsRecorded.Inc()
	default:
		r.metrics.EventsDropped.Inc()
		r.logger.Debug("lookup event dropped, buffer full", "id", event.ID, "kind", event.Kind)
	}
}

// Run drains the queue until ctx is cancelled, then flushes whatever is
// left with a single bounded attempt.
func (r *Recorder) Run(ctx context.Context) error {
	r.logger.Info("event recorder started", "batch_size", r.batchSize, "flush_interval", r.flushInterval)
	r.metrics.RecorderRunning.Set(1)
	defer r.metrics.RecorderRunning.Set(0)

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.LookupEvent, 0, r.batchSize)
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("event recorder stopping", "reason", ctx.Err())
			r.finalFlush(ctx, r.drain(batch))
			return nil

		case ev := <-r.events:
			batch = append(batch, ev)
			if len(batch) >= r.batchSize {
				batch = r.flush(ctx, batch, &backoff)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				batch = r.flush(ctx, batch, &backoff)
			}
		}
	}
}

// flush writes batch, retrying with backoff until it succeeds, fails
// permanently, or ctx ends. It returns a fresh batch on success or permanent
// failure and the unsent batch on cancellation so the final flush can pick
// it up.
func (r *Recorder) flush(ctx context.Context, batch []domain.LookupEvent, backoff *time.Duration) []domain.LookupEvent {
	for {
		err := r.load(ctx, batch)
		if err == nil {
			*backoff = initialBackoff
			return make([]domain.LookupEvent, 0, r.batchSize)
		}
		if errors.Is(err, ErrPermanent) {
			r.metrics.EventsDropped.Add(float64(len(batch)))
			r.logger.Error("publish batch failed permanently, events dropped", "error", err, "batch_size", len(batch))
			*backoff = initialBackoff
			return make([]domain.LookupEvent, 0, r.batchSize)
		}
		r.logger.Error("publish batch failed", "error", err, "batch_size", len(batch), "retry_in", *backoff)

		if !sleepWithContext(ctx, *backoff) {
			return batch
		}
		*backoff = nextBackoff(*backoff, maxBackoff)
	}
}

func (r *Recorder) load(ctx context.Context, batch []domain.LookupEvent) error {
	start := time.Now()
	if err := r.loader.LoadBatch(ctx, batch); err != nil {
		r.metrics.PublishErrors.Inc()
		return err
	}
	r.metrics.BatchSize.Observe(float64(len(batch)))
	r.metrics.BatchPublishDuration.Observe(time.Since(start).Seconds())
	r.metrics.EventsPublished.Add(float64(len(batch)))
	return nil
}

// drain moves every queued event into batch without blocking.
func (r *Recorder) drain(batch []domain.LookupEvent) []domain.LookupEvent {
	for {
		select {
		case ev := <-r.events:
			batch = append(batch, ev)
		default:
			return batch
		}
	}
}

func (r *Recorder) finalFlush(ctx context.Context, batch []domain.LookupEvent) {
	if len(batch) == 0 {
		return
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
	defer cancel()

	if err := r.load(flushCtx, batch); err != nil {
		r.logger.Error("final flush failed, events lost", "error", err, "batch_size", len(batch))
		return
	}
	r.logger.Info("final flush complete", "batch_size", len(batch))
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
