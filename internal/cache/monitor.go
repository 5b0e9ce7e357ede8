package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/examify/examify-backend/internal/config"
	"github.com/examify/examify-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// counterTTL bounds how long per-attempt integrity counters survive.
const counterTTL = 24 * time.Hour

// Monitor publishes exam events to live monitors and tracks integrity signals.
type Monitor struct {
	rdb *redis.Client
}

// NewMonitor creates a new Monitor.
func NewMonitor(rdb *redis.Client) *Monitor {
	return &Monitor{rdb: rdb}
}

// Publish sends an event on the exam's monitor channel.
func (m *Monitor) Publish(ctx context.Context, examID uuid.UUID, ev model.MonitorEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal monitor event: %w", err)
	}
	return m.rdb.Publish(ctx, config.CacheKey.ExamMonitorChannel(examID.String()), data).Err()
}

// Subscribe attaches to the exam's monitor channel and yields raw message
// payloads. stop releases the subscription; the channel closes after it.
func (m *Monitor) Subscribe(ctx context.Context, examID uuid.UUID) (<-chan string, func()) {
	pubsub := m.rdb.Subscribe(ctx, config.CacheKey.ExamMonitorChannel(examID.String()))

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = pubsub.Close() }
}

// RecordIntegrity counts the signal, queues it for persistence and returns the
// new count of that kind for the attempt.
func (m *Monitor) RecordIntegrity(ctx context.Context, ev model.IntegrityEvent) (int64, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return 0, fmt.Errorf("marshal integrity event: %w", err)
	}

	counterKey := config.CacheKey.IntegrityCounterKey(ev.ExamID.String(), ev.UserID.String())

	pipe := m.rdb.TxPipeline()
	incr := pipe.HIncrBy(ctx, counterKey, string(ev.Kind), 1)
	pipe.Expire(ctx, counterKey, counterTTL)
	pipe.RPush(ctx, config.WorkerKey.PersistIntegrityQueue, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record integrity event: %w", err)
	}
	return incr.Val(), nil
}

// IntegrityCounters returns signal counts per user for an exam.
func (m *Monitor) IntegrityCounters(ctx context.Context, examID uuid.UUID) (map[string]map[string]int64, error) {
	out := make(map[string]map[string]int64)

	iter := m.rdb.Scan(ctx, 0, config.CacheKey.IntegrityCounterPattern(examID.String()), 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		userID := userFromCounterKey(key)
		if userID == "" {
			continue
		}

		fields, err := m.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("read counters: %w", err)
		}
		counts := make(map[string]int64, len(fields))
		for kind, v := range fields {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			counts[kind] = n
		}
		out[userID] = counts
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan counters: %w", err)
	}
	return out, nil
}

// userFromCounterKey extracts the user ID from "exam:<id>:user:<uid>:integrity".
func userFromCounterKey(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) != 5 || parts[2] != "user" {
		return ""
	}
	return parts[3]
}
