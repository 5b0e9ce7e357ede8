package repository

import (
	"context"
	"errors"

	"github.com/examify/examify-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resultColumns = `id, user_id, exam_id, score, passed, auto_submitted, tab_switches, duration, completed_at`

// ResultRepository handles result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func scanResult(row pgx.Row) (*model.Result, error) {
	res := &model.Result{}
	if err := row.Scan(&res.ID, &res.UserID, &res.ExamID, &res.Score, &res.Passed,
		&res.AutoSubmitted, &res.TabSwitches, &res.Duration, &res.CompletedAt); err != nil {
		return nil, err
	}
	return res, nil
}

// Create inserts a result. The (user_id, exam_id) unique constraint makes the
// insert a no-op when a result already exists; that case returns ErrDuplicateResult.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO results (user_id, exam_id, score, passed, auto_submitted, tab_switches, duration, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, exam_id) DO NOTHING
		 RETURNING id`,
		res.UserID, res.ExamID, res.Score, res.Passed,
		res.AutoSubmitted, res.TabSwitches, res.Duration, res.CompletedAt,
	).Scan(&res.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateResult
	}
	return err
}

// GetByUserAndExam retrieves the result of a user for an exam.
func (r *ResultRepository) GetByUserAndExam(ctx context.Context, userID, examID uuid.UUID) (*model.Result, error) {
	res, err := scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM results
		 WHERE user_id = $1 AND exam_id = $2`, userID, examID))
	if err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

// ListExamIDsByUser returns the IDs of every exam the user has a result for.
func (r *ResultRepository) ListExamIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT exam_id FROM results WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

// ListByUserWithExam returns a user's results joined with exam and exam author,
// most recent first.
func (r *ResultRepository) ListByUserWithExam(ctx context.Context, userID uuid.UUID) ([]model.ResultWithExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.user_id, r.exam_id, r.score, r.passed, r.auto_submitted,
		        r.tab_switches, r.duration, r.completed_at,
		        e.id, e.title, e.questions, e.created_by, e.status, e.created_at, e.updated_at,
		        c.id, c.username, c.name
		 FROM results r
		 JOIN exams e ON e.id = r.exam_id
		 LEFT JOIN users c ON c.id = e.created_by
		 WHERE r.user_id = $1
		 ORDER BY r.completed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ResultWithExam{}
	for rows.Next() {
		var (
			item       model.ResultWithExam
			exam       model.ExamWithCreator
			creatorID  *uuid.UUID
			creatorUN  *string
			creatorNme *string
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.ExamID, &item.Score, &item.Passed,
			&item.AutoSubmitted, &item.TabSwitches, &item.Duration, &item.CompletedAt,
			&exam.ID, &exam.Title, &exam.Questions, &exam.CreatedBy, &exam.Status, &exam.CreatedAt, &exam.UpdatedAt,
			&creatorID, &creatorUN, &creatorNme); err != nil {
			return nil, err
		}
		exam.Creator = summary(creatorID, creatorUN, creatorNme)
		item.Exam = &exam
		out = append(out, item)
	}
	return out, rows.Err()
}

// GetCertificateSource loads a result with its user, exam and exam author.
func (r *ResultRepository) GetCertificateSource(ctx context.Context, resultID uuid.UUID) (*model.CertificateSource, error) {
	var (
		src                   model.CertificateSource
		exam                  model.Exam
		userID                *uuid.UUID
		userName, userDisplay *string
		cID                   *uuid.UUID
		cName, cDisplay       *string
	)
	res := &src.Result
	err := r.pool.QueryRow(ctx,
		`SELECT r.id, r.user_id, r.exam_id, r.score, r.passed, r.auto_submitted,
		        r.tab_switches, r.duration, r.completed_at,
		        u.id, u.username, u.name,
		        e.id, e.title, e.questions, e.created_by, e.status, e.created_at, e.updated_at,
		        c.id, c.username, c.name
		 FROM results r
		 JOIN exams e ON e.id = r.exam_id
		 LEFT JOIN users u ON u.id = r.user_id
		 LEFT JOIN users c ON c.id = e.created_by
		 WHERE r.id = $1`, resultID,
	).Scan(&res.ID, &res.UserID, &res.ExamID, &res.Score, &res.Passed,
		&res.AutoSubmitted, &res.TabSwitches, &res.Duration, &res.CompletedAt,
		&userID, &userName, &userDisplay,
		&exam.ID, &exam.Title, &exam.Questions, &exam.CreatedBy, &exam.Status, &exam.CreatedAt, &exam.UpdatedAt,
		&cID, &cName, &cDisplay)
	if err != nil {
		return nil, notFound(err)
	}

	src.User = summary(userID, userName, userDisplay)
	src.Exam = &exam
	src.Creator = summary(cID, cName, cDisplay)
	return &src, nil
}

// CountByExam returns how many results exist for an exam.
func (r *ResultRepository) CountByExam(ctx context.Context, examID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM results WHERE exam_id = $1`, examID).Scan(&n)
	return n, err
}

// summary builds a UserSummary from nullable LEFT JOIN columns.
func summary(id *uuid.UUID, username, name *string) *model.UserSummary {
	if id == nil {
		return nil
	}
	s := &model.UserSummary{ID: *id}
	if username != nil {
		s.Username = *username
	}
	if name != nil {
		s.Name = *name
	}
	return s
}
