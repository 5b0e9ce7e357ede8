package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/examify/examify-backend/internal/model"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// EventSink persists integrity events.
type EventSink interface {
	CopyEvents(ctx context.Context, events []model.IntegrityEvent) error
	InsertEvent(ctx context.Context, ev model.IntegrityEvent) error
}

// IntegrityWorker drains queued integrity signals into PostgreSQL in batches.
type IntegrityWorker struct {
	queue Queue
	sink  EventSink
	log   zerolog.Logger

	// backoff is slept after a Redis error or a requeue.
	backoff time.Duration
}

func NewIntegrityWorker(queue Queue, sink EventSink, log zerolog.Logger) *IntegrityWorker {
	return &IntegrityWorker{
		queue:   queue,
		sink:    sink,
		log:     log.With().Str("component", "integrity_worker").Logger(),
		backoff: 2 * time.Second,
	}
}

// Start runs until ctx is cancelled, then flushes what it holds.
func (w *IntegrityWorker) Start(ctx context.Context) {
	w.log.Info().Msg("IntegrityWorker started")

	buffer := make([]model.IntegrityEvent, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		raw, err := w.queue.Pop(ctx, PollTimeout)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) {
				continue
			}
			if ctx.Err() != nil {
				w.shutdown(buffer)
				return
			}
			w.log.Error().Err(err).Msg("Queue error, backing off")
			w.sleep(ctx)
			continue
		}

		var ev model.IntegrityEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			// Malformed items can never succeed; drop them.
			w.log.Error().Err(err).Str("data", string(raw)).Msg("Discarding malformed integrity event")
			continue
		}
		if !ev.Kind.Valid() {
			w.log.Warn().Str("kind", string(ev.Kind)).Msg("Discarding integrity event of unknown kind")
			continue
		}

		buffer = append(buffer, ev)
	}
}

// flushSafe attempts a bulk copy, then row inserts, then requeues what still fails.
func (w *IntegrityWorker) flushSafe(ctx context.Context, batch []model.IntegrityEvent) {
	err := w.sink.CopyEvents(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Integrity events persisted")
		return
	}

	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk copy failed, attempting row-by-row recovery")

	var failed []model.IntegrityEvent
	for _, ev := range batch {
		if err := w.sink.InsertEvent(ctx, ev); err != nil {
			w.log.Error().Err(err).
				Str("exam_id", ev.ExamID.String()).
				Str("user_id", ev.UserID.String()).
				Msg("Insert failed, requeueing")
			failed = append(failed, ev)
		}
	}

	if len(failed) > 0 {
		w.requeue(ctx, failed)
	}
}

func (w *IntegrityWorker) requeue(ctx context.Context, events []model.IntegrityEvent) {
	items := make([][]byte, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		items = append(items, data)
	}

	if err := w.queue.Push(ctx, items...); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("Failed to requeue integrity events, data lost")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed integrity events")
	// Avoid thrashing while the database is down.
	w.sleep(ctx)
}

func (w *IntegrityWorker) sleep(ctx context.Context) {
	t := time.NewTimer(w.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (w *IntegrityWorker) shutdown(buffer []model.IntegrityEvent) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
