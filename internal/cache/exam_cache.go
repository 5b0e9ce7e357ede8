package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/examify/examify-backend/internal/config"
	"github.com/examify/examify-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ExamCache keeps serialized exam documents in Redis.
type ExamCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewExamCache creates a new ExamCache. A zero ttl keeps entries until invalidated.
func NewExamCache(rdb *redis.Client, ttl time.Duration) *ExamCache {
	return &ExamCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached exam, or nil without error on a miss.
func (c *ExamCache) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	data, err := c.rdb.Get(ctx, config.CacheKey.ExamDocumentKey(id.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exam document: %w", err)
	}

	var exam model.Exam
	if err := json.Unmarshal(data, &exam); err != nil {
		return nil, fmt.Errorf("unmarshal exam document: %w", err)
	}
	return &exam, nil
}

// Set stores the exam document.
func (c *ExamCache) Set(ctx context.Context, exam *model.Exam) error {
	data, err := json.Marshal(exam)
	if err != nil {
		return fmt.Errorf("marshal exam document: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.ExamDocumentKey(exam.ID.String()), data, c.ttl).Err()
}

// Invalidate drops the cached exam document.
func (c *ExamCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, config.CacheKey.ExamDocumentKey(id.String())).Err()
}
