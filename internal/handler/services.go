package handler

import (
	"context"

	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/service"
	"github.com/google/uuid"
)

// Accounts is the auth behavior the HTTP layer needs.
type Accounts interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
	Logout(ctx context.Context, p service.Principal) error
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

// Exams is the exam behavior the HTTP layer needs.
type Exams interface {
	CreateExam(ctx context.Context, examinerID uuid.UUID, req model.CreateExamRequest) (*model.Exam, error)
	ListExams(ctx context.Context, userID uuid.UUID, role model.Role) ([]model.Exam, error)
	GetExam(ctx context.Context, examID, userID uuid.UUID, role model.Role) (*model.Exam, error)
	SubmitExam(ctx context.Context, userID, examID uuid.UUID, req model.SubmitExamRequest) (*model.SubmitExamResponse, error)
	ToggleExamStatus(ctx context.Context, examinerID, examID uuid.UUID) (*model.Exam, error)
	ListAllExams(ctx context.Context, role model.Role) ([]model.Exam, error)
	ExamOverview(ctx context.Context, examinerID, examID uuid.UUID) (*model.Exam, int, error)
}

// Results is the result and certificate behavior the HTTP layer needs.
type Results interface {
	ListResults(ctx context.Context, userID uuid.UUID) ([]model.ResultWithExam, error)
	RenderCertificate(ctx context.Context, resultID, requesterID uuid.UUID) (*service.RenderedCertificate, error)
}

// IntegrityRecorder counts, queues and fans out integrity signals.
type IntegrityRecorder interface {
	RecordIntegrity(ctx context.Context, ev model.IntegrityEvent) (int64, error)
	Publish(ctx context.Context, examID uuid.UUID, ev model.MonitorEvent) error
}

// MonitorFeed is the live event source for exam monitors.
type MonitorFeed interface {
	Subscribe(ctx context.Context, examID uuid.UUID) (<-chan string, func())
	IntegrityCounters(ctx context.Context, examID uuid.UUID) (map[string]map[string]int64, error)
}
