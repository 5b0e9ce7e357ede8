package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExamService handles exam authoring, visibility, submission and scoring.
type ExamService struct {
	exams   ExamStore
	results ResultStore
	cache   ExamCache
	events  EventPublisher
	redact  bool
	log     zerolog.Logger
	now     func() time.Time
}

// NewExamService creates a new ExamService. cache and events may be nil.
// When redactAnswers is set, students receive exams without correct answers.
func NewExamService(
	exams ExamStore,
	results ResultStore,
	cache ExamCache,
	events EventPublisher,
	redactAnswers bool,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		exams:   exams,
		results: results,
		cache:   cache,
		events:  events,
		redact:  redactAnswers,
		log:     log.With().Str("component", "exam_service").Logger(),
		now:     time.Now,
	}
}

// CreateExam validates and stores a new active exam owned by examinerID.
func (s *ExamService) CreateExam(ctx context.Context, examinerID uuid.UUID, req model.CreateExamRequest) (*model.Exam, error) {
	if err := validateExam(req); err != nil {
		return nil, err
	}

	questions := make([]model.Question, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = model.Question{
			Question: strings.TrimSpace(q.Question),
			Options:  q.Options,
			Answer:   q.Answer,
		}
	}

	exam := &model.Exam{
		Title:     strings.TrimSpace(req.Title),
		Questions: questions,
		CreatedBy: examinerID,
		Status:    model.ExamStatusActive,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("examiner_id", examinerID.String()).
		Int("questions", len(questions)).
		Msg("Exam created")
	return exam, nil
}

func validateExam(req model.CreateExamRequest) error {
	fields := make(map[string]string)

	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "title is required"
	}
	if len(req.Questions) == 0 {
		fields["questions"] = "at least one question is required"
	}
	for i, q := range req.Questions {
		if strings.TrimSpace(q.Question) == "" {
			fields[fmt.Sprintf("questions[%d].question", i)] = "question text is required"
		}
		if len(q.Options) == 0 {
			fields[fmt.Sprintf("questions[%d].options", i)] = "at least one option is required"
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				fields[fmt.Sprintf("questions[%d].options[%d]", i, j)] = "option must not be empty"
			}
		}
		if q.Answer == "" {
			fields[fmt.Sprintf("questions[%d].answer", i)] = "answer is required"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Message: "invalid exam", Fields: fields}
	}
	return nil
}

// ListExams returns an examiner's own exams, or the active exams a student has
// not yet taken.
func (s *ExamService) ListExams(ctx context.Context, userID uuid.UUID, role model.Role) ([]model.Exam, error) {
	if role == model.RoleExaminer {
		exams, err := s.exams.ListByCreator(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list exams by creator: %w", err)
		}
		return exams, nil
	}

	taken, err := s.results.ListExamIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list taken exams: %w", err)
	}

	exams, err := s.exams.ListActiveExcluding(ctx, taken)
	if err != nil {
		return nil, fmt.Errorf("list active exams: %w", err)
	}
	if s.redact {
		for i := range exams {
			exams[i] = exams[i].WithoutAnswers()
		}
	}
	return exams, nil
}

// GetExam returns one exam. A student who already has a result for it gets an
// AlreadyCompletedError carrying that result.
func (s *ExamService) GetExam(ctx context.Context, examID, userID uuid.UUID, role model.Role) (*model.Exam, error) {
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	if role != model.RoleStudent {
		return exam, nil
	}

	existing, err := s.results.GetByUserAndExam(ctx, userID, examID)
	switch {
	case err == nil:
		return nil, &AlreadyCompletedError{Result: existing}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("check result: %w", err)
	}

	if s.redact {
		redacted := exam.WithoutAnswers()
		return &redacted, nil
	}
	return exam, nil
}

// SubmitExam scores a student's answers and stores the single result for the
// (user, exam) pair.
func (s *ExamService) SubmitExam(ctx context.Context, userID, examID uuid.UUID, req model.SubmitExamRequest) (*model.SubmitExamResponse, error) {
	existing, err := s.results.GetByUserAndExam(ctx, userID, examID)
	switch {
	case err == nil:
		return nil, &DuplicateSubmissionError{Result: existing}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("check result: %w", err)
	}

	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	score := ScoreAnswers(exam.Questions, req.Answers)
	result := &model.Result{
		UserID:        userID,
		ExamID:        examID,
		Score:         score,
		Passed:        IsPassing(score, len(exam.Questions)),
		AutoSubmitted: req.AutoSubmitted,
		TabSwitches:   req.TabSwitches,
		Duration:      req.Duration,
		CompletedAt:   s.now().UTC(),
	}

	if err := s.results.Create(ctx, result); err != nil {
		if errors.Is(err, repository.ErrDuplicateResult) {
			winner, getErr := s.results.GetByUserAndExam(ctx, userID, examID)
			if getErr != nil {
				return nil, fmt.Errorf("load existing result: %w", getErr)
			}
			return nil, &DuplicateSubmissionError{Result: winner}
		}
		return nil, fmt.Errorf("create result: %w", err)
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Str("user_id", userID.String()).
		Int("score", score).
		Int("total", len(exam.Questions)).
		Bool("passed", result.Passed).
		Bool("auto_submitted", result.AutoSubmitted).
		Msg("Exam submitted")

	s.publish(ctx, examID, model.MonitorEvent{
		Type:   model.MonitorEventSubmitted,
		ExamID: examID,
		UserID: userID,
		Result: result,
		At:     result.CompletedAt,
	})

	return &model.SubmitExamResponse{
		Score:         result.Score,
		Passed:        result.Passed,
		AutoSubmitted: result.AutoSubmitted,
	}, nil
}

// ToggleExamStatus flips an exam between active and inactive. Only the
// creator may toggle.
func (s *ExamService) ToggleExamStatus(ctx context.Context, examinerID, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.getFromStore(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.CreatedBy != examinerID {
		return nil, &ForbiddenError{Reason: "you can only change the status of your own exams"}
	}

	updated, err := s.exams.UpdateStatus(ctx, examID, exam.Status.Toggled())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "exam"}
		}
		return nil, fmt.Errorf("update exam status: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, examID); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to invalidate exam cache")
		}
	}

	s.log.Info().Str("exam_id", examID.String()).Str("status", string(updated.Status)).Msg("Exam status changed")
	return updated, nil
}

// ListAllExams returns every exam. Examiners only.
func (s *ExamService) ListAllExams(ctx context.Context, role model.Role) ([]model.Exam, error) {
	if role != model.RoleExaminer {
		return nil, &ForbiddenError{Reason: "only examiners can list all exams"}
	}
	exams, err := s.exams.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all exams: %w", err)
	}
	return exams, nil
}

// ExamOverview returns an owned exam with its result count, for live monitoring.
func (s *ExamService) ExamOverview(ctx context.Context, examinerID, examID uuid.UUID) (*model.Exam, int, error) {
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, 0, err
	}
	if exam.CreatedBy != examinerID {
		return nil, 0, &ForbiddenError{Reason: "you can only monitor your own exams"}
	}
	count, err := s.results.CountByExam(ctx, examID)
	if err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}
	return exam, count, nil
}

// loadExam reads through the cache. Cache failures fall back to the store.
func (s *ExamService) loadExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, examID)
		if err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Exam cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	exam, err := s.getFromStore(ctx, examID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, exam); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Exam cache write failed")
		}
	}
	return exam, nil
}

func (s *ExamService) getFromStore(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "exam"}
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

func (s *ExamService) publish(ctx context.Context, examID uuid.UUID, ev model.MonitorEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, examID, ev); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to publish monitor event")
	}
}
