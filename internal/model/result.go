package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the stored outcome of one student's single attempt at one exam.
// It is written once and never modified.
type Result struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	ExamID        uuid.UUID `json:"examId"`
	Score         int       `json:"score"`
	Passed        bool      `json:"passed"`
	AutoSubmitted bool      `json:"autoSubmitted"`
	TabSwitches   int       `json:"tabSwitches"`
	Duration      int       `json:"duration"`
	CompletedAt   time.Time `json:"completedAt"`
}

// ResultWithExam is a result joined with its exam and the exam's author.
type ResultWithExam struct {
	Result
	Exam *ExamWithCreator `json:"exam"`
}

// CertificateSource is everything needed to render a certificate for a result.
type CertificateSource struct {
	Result  Result
	User    *UserSummary
	Exam    *Exam
	Creator *UserSummary
}

// GenerateCertificateRequest is the body accepted by the legacy certificate route.
type GenerateCertificateRequest struct {
	ResultID string `json:"resultId" binding:"required,uuid"`
}
