package repository

import (
	"context"

	"github.com/examify/examify-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegrityRepository persists advisory exam-session signals.
type IntegrityRepository struct {
	pool *pgxpool.Pool
}

// NewIntegrityRepository creates a new IntegrityRepository.
func NewIntegrityRepository(pool *pgxpool.Pool) *IntegrityRepository {
	return &IntegrityRepository{pool: pool}
}

// CopyEvents bulk-inserts events with the COPY protocol.
func (r *IntegrityRepository) CopyEvents(ctx context.Context, events []model.IntegrityEvent) error {
	rows := make([][]interface{}, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []interface{}{
			ev.ExamID, ev.UserID, string(ev.Kind), payloadOrNull(ev), ev.RecordedAt,
		})
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"integrity_events"},
		[]string{"exam_id", "user_id", "kind", "payload", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// InsertEvent inserts a single event.
func (r *IntegrityRepository) InsertEvent(ctx context.Context, ev model.IntegrityEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO integrity_events (exam_id, user_id, kind, payload, recorded_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)`,
		ev.ExamID, ev.UserID, string(ev.Kind), payloadOrNull(ev), ev.RecordedAt,
	)
	return err
}

func payloadOrNull(ev model.IntegrityEvent) interface{} {
	if len(ev.Payload) == 0 {
		return nil
	}
	return string(ev.Payload)
}
