package handler

import (
	"errors"
	"net/http"

	"github.com/examify/examify-backend/internal/response"
	"github.com/examify/examify-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respondError maps a service error onto the HTTP error contract.
// Anything unrecognised is logged and reported as a 500.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		forbiddenErr  *service.ForbiddenError
		completedErr  *service.AlreadyCompletedError
		duplicateErr  *service.DuplicateSubmissionError
	)

	switch {
	case errors.As(err, &validationErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validationErr.Message, validationErr.Fields)
	case errors.As(err, &notFoundErr):
		response.FailWithMessage(c, http.StatusNotFound, response.ErrNotFound, capitalize(notFoundErr.Error()))
	case errors.As(err, &forbiddenErr):
		response.FailWithMessage(c, http.StatusForbidden, response.ErrForbidden, capitalize(forbiddenErr.Error()))
	case errors.As(err, &completedErr):
		response.FailWithResult(c, http.StatusForbidden, response.ErrAlreadyCompleted, "", completedErr.Result)
	case errors.As(err, &duplicateErr):
		response.FailWithResult(c, http.StatusBadRequest, response.ErrDuplicateSubmission, "", duplicateErr.Result)
	case errors.Is(err, service.ErrUsernameTaken):
		response.Fail(c, http.StatusConflict, response.ErrUsernameTaken)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	default:
		log.Error().Err(err).
			Str("request_id", response.RequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
