package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/examify/examify-backend/internal/certificate"
	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CertificateRenderer turns a laid-out certificate into file bytes.
type CertificateRenderer interface {
	Render(doc certificate.Document) ([]byte, error)
}

// RenderedCertificate is a finished certificate file.
type RenderedCertificate struct {
	Filename string
	Content  []byte
}

// ResultService serves result history and certificates.
type ResultService struct {
	results  ResultStore
	renderer CertificateRenderer
	log      zerolog.Logger
	now      func() time.Time
}

// NewResultService creates a new ResultService.
func NewResultService(results ResultStore, renderer CertificateRenderer, log zerolog.Logger) *ResultService {
	return &ResultService{
		results:  results,
		renderer: renderer,
		log:      log.With().Str("component", "result_service").Logger(),
		now:      time.Now,
	}
}

// ListResults returns the user's results with exam and examiner, newest first.
func (s *ResultService) ListResults(ctx context.Context, userID uuid.UUID) ([]model.ResultWithExam, error) {
	results, err := s.results.ListByUserWithExam(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// BuildCertificate lays out the certificate for resultID. Only the student who
// owns the result or the examiner who created the exam may request it.
func (s *ResultService) BuildCertificate(ctx context.Context, resultID, requesterID uuid.UUID) (*certificate.Document, error) {
	src, err := s.results.GetCertificateSource(ctx, resultID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "result"}
		}
		return nil, fmt.Errorf("get certificate source: %w", err)
	}

	if src.User == nil || src.User.Username == "" {
		return nil, &ValidationError{Message: "user information not found for this result"}
	}
	if src.Exam == nil {
		return nil, &NotFoundError{Resource: "exam"}
	}

	if requesterID != src.Result.UserID && requesterID != src.Exam.CreatedBy {
		return nil, &ForbiddenError{Reason: "you do not have access to this certificate"}
	}

	examiner := "Examiner"
	if src.Creator != nil {
		examiner = certificate.ExaminerDisplayName(src.Creator.Name, src.Creator.Username)
	}

	return &certificate.Document{
		StudentName:  certificate.StudentDisplayName(src.User.Username),
		ExamTitle:    src.Exam.Title,
		Score:        src.Result.Score,
		Passed:       src.Result.Passed,
		ExaminerName: examiner,
		IssuedOn:     s.now(),
	}, nil
}

// RenderCertificate builds and renders the certificate fully in memory.
func (s *ResultService) RenderCertificate(ctx context.Context, resultID, requesterID uuid.UUID) (*RenderedCertificate, error) {
	doc, err := s.BuildCertificate(ctx, resultID, requesterID)
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.Render(*doc)
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}

	s.log.Info().
		Str("result_id", resultID.String()).
		Str("requester_id", requesterID.String()).
		Int("bytes", len(content)).
		Msg("Certificate rendered")

	return &RenderedCertificate{
		Filename: fmt.Sprintf("certificate-%s.pdf", resultID),
		Content:  content,
	}, nil
}
