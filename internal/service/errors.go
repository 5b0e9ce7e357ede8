package service

import (
	"errors"
	"strings"

	"github.com/examify/examify-backend/internal/model"
)

// Common service errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrSessionRevoked     = errors.New("session is no longer active")
	// ErrSessionUnavailable wraps session store failures; the token itself may be fine.
	ErrSessionUnavailable = errors.New("session store unavailable")
)

// ValidationError reports malformed input. Fields maps a field path to its problem.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ForbiddenError reports an authenticated caller lacking the capability.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return "access denied"
	}
	return e.Reason
}

// AlreadyCompletedError is returned when a student opens an exam they already took.
type AlreadyCompletedError struct {
	Result *model.Result
}

func (e *AlreadyCompletedError) Error() string {
	return "you have already completed this exam"
}

// DuplicateSubmissionError is returned when a result for the pair already exists.
type DuplicateSubmissionError struct {
	Result *model.Result
}

func (e *DuplicateSubmissionError) Error() string {
	return "you have already submitted this exam"
}
