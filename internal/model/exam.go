package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusActive   ExamStatus = "active"
	ExamStatusInactive ExamStatus = "inactive"
)

// Toggled returns the opposite status.
func (s ExamStatus) Toggled() ExamStatus {
	if s == ExamStatusActive {
		return ExamStatusInactive
	}
	return ExamStatusActive
}

// Question is one multiple-choice item. Answer holds the correct option text.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer,omitempty"`
}

// Exam is an ordered set of questions authored by an examiner.
// Questions are persisted as a single JSONB document.
type Exam struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	CreatedBy uuid.UUID  `json:"createdBy"`
	Status    ExamStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// WithoutAnswers returns a copy of the exam with every correct answer blanked.
func (e Exam) WithoutAnswers() Exam {
	qs := make([]Question, len(e.Questions))
	for i, q := range e.Questions {
		qs[i] = Question{Question: q.Question, Options: q.Options}
	}
	e.Questions = qs
	return e
}

// ExamWithCreator is an exam joined with its author.
type ExamWithCreator struct {
	Exam
	Creator *UserSummary `json:"creator,omitempty"`
}

// CreateExamRequest is the payload for authoring a new exam.
// Field rules are enforced by the exam service so that every caller gets them.
type CreateExamRequest struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// SubmitExamRequest carries a student's answers. Answers correlate with
// questions by position.
type SubmitExamRequest struct {
	ExamID        string   `json:"examId"`
	Answers       []string `json:"answers"`
	AutoSubmitted bool     `json:"autoSubmitted"`
	TabSwitches   int      `json:"tabSwitches" binding:"min=0"`
	Duration      int      `json:"duration" binding:"min=0"`
}

// SubmitExamResponse is the scoring outcome returned to the student.
type SubmitExamResponse struct {
	Score         int  `json:"score"`
	Passed        bool `json:"passed"`
	AutoSubmitted bool `json:"autoSubmitted"`
}
