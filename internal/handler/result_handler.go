package handler

import (
	"fmt"
	"net/http"

	"github.com/examify/examify-backend/internal/middleware"
	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/response"
	"github.com/examify/examify-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ResultHandler handles result history and certificate downloads.
type ResultHandler struct {
	results Results
	log     zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results Results, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		results: results,
		log:     log.With().Str("component", "result_handler").Logger(),
	}
}

// List godoc
// GET /api/results
func (h *ResultHandler) List(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	results, err := h.results.ListResults(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if results == nil {
		results = []model.ResultWithExam{}
	}

	response.Success(c, http.StatusOK, results)
}

// Certificate godoc
// GET /api/results/certificate/:resultId
func (h *ResultHandler) Certificate(c *gin.Context) {
	resultID, ok := validator.ParamUUID(c, "resultId")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	h.sendCertificate(c, resultID)
}

// GenerateCertificate godoc
// POST /api/certificate/generate
// Body: {"resultId": "..."}.
func (h *ResultHandler) GenerateCertificate(c *gin.Context) {
	var req model.GenerateCertificateRequest
	if errs := validator.Bind(c, &req); errs != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, "", errs)
		return
	}

	resultID, err := uuid.Parse(req.ResultID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	h.sendCertificate(c, resultID)
}

// sendCertificate renders the whole PDF before writing any header, so a
// render failure still produces a JSON error.
func (h *ResultHandler) sendCertificate(c *gin.Context, resultID uuid.UUID) {
	p := middleware.GetPrincipal(c)

	cert, err := h.results.RenderCertificate(c.Request.Context(), resultID, p.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, cert.Filename))
	c.Data(http.StatusOK, "application/pdf", cert.Content)
}
