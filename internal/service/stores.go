package service

import (
	"context"
	"time"

	"github.com/examify/examify-backend/internal/model"
	"github.com/google/uuid"
)

// The interfaces below are satisfied by the pgx repositories and the Redis
// stores in internal/cache.

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// SessionStore tracks live token IDs.
type SessionStore interface {
	Save(ctx context.Context, userID, jti string, ttl time.Duration) error
	Exists(ctx context.Context, userID, jti string) (bool, error)
	Delete(ctx context.Context, userID, jti string) error
}

// ExamStore persists exams.
type ExamStore interface {
	Create(ctx context.Context, e *model.Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Exam, error)
	ListActiveExcluding(ctx context.Context, excluded []uuid.UUID) ([]model.Exam, error)
	ListAll(ctx context.Context) ([]model.Exam, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) (*model.Exam, error)
}

// ResultStore persists results.
type ResultStore interface {
	Create(ctx context.Context, res *model.Result) error
	GetByUserAndExam(ctx context.Context, userID, examID uuid.UUID) (*model.Result, error)
	ListExamIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListByUserWithExam(ctx context.Context, userID uuid.UUID) ([]model.ResultWithExam, error)
	GetCertificateSource(ctx context.Context, resultID uuid.UUID) (*model.CertificateSource, error)
	CountByExam(ctx context.Context, examID uuid.UUID) (int, error)
}

// ExamCache is a read-through cache of exam documents. Get returns nil, nil on a miss.
type ExamCache interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	Set(ctx context.Context, exam *model.Exam) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// EventPublisher fans exam events out to live monitors.
type EventPublisher interface {
	Publish(ctx context.Context, examID uuid.UUID, ev model.MonitorEvent) error
}
