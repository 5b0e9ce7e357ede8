package repository

import (
	"context"

	"github.com/examify/examify-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const examColumns = `id, title, questions, created_by, status, created_at, updated_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	if err := row.Scan(&e.ID, &e.Title, &e.Questions, &e.CreatedBy, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func collectExams(rows pgx.Rows) ([]model.Exam, error) {
	defer rows.Close()

	exams := []model.Exam{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, err := scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// Create inserts a new exam. Questions are stored as one JSONB document.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, questions, created_by, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.Questions, e.CreatedBy, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// ListByCreator returns every exam authored by creatorID, newest first.
func (r *ExamRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE created_by = $1
		 ORDER BY created_at DESC`, creatorID)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

// ListActiveExcluding returns active exams whose IDs are not in excluded.
func (r *ExamRepository) ListActiveExcluding(ctx context.Context, excluded []uuid.UUID) ([]model.Exam, error) {
	if excluded == nil {
		excluded = []uuid.UUID{}
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE status = $1 AND NOT (id = ANY($2::uuid[]))
		 ORDER BY created_at DESC`, model.ExamStatusActive, excluded)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

// ListAll returns every exam regardless of author or status.
func (r *ExamRepository) ListAll(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

// UpdateStatus sets an exam's status and returns the updated row.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) (*model.Exam, error) {
	e, err := scanExam(r.pool.QueryRow(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+examColumns, status, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}
