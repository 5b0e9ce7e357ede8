package handler

import (
	"net/http"

	"github.com/examify/examify-backend/internal/middleware"
	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/response"
	"github.com/examify/examify-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExamHandler handles exam endpoints.
type ExamHandler struct {
	exams Exams
	log   zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(exams Exams, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		exams: exams,
		log:   log.With().Str("component", "exam_handler").Logger(),
	}
}

// Create godoc
// POST /api/exams
func (h *ExamHandler) Create(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	var req model.CreateExamRequest
	if errs := validator.Bind(c, &req); errs != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, "", errs)
		return
	}

	exam, err := h.exams.CreateExam(c.Request.Context(), p.UserID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, exam)
}

// List godoc
// GET /api/exams
// Examiners get their own exams; students get active exams they have not taken.
func (h *ExamHandler) List(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	exams, err := h.exams.ListExams(c.Request.Context(), p.UserID, p.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	response.Success(c, http.StatusOK, exams)
}

// ListAll godoc
// GET /api/exams/all
func (h *ExamHandler) ListAll(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	exams, err := h.exams.ListAllExams(c.Request.Context(), p.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	response.Success(c, http.StatusOK, exams)
}

// Get godoc
// GET /api/exams/:id
func (h *ExamHandler) Get(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	examID, ok := validator.ParamUUID(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.exams.GetExam(c.Request.Context(), examID, p.UserID, p.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, exam)
}

// Submit godoc
// POST /api/exams/submit
// POST /api/exams/:id/submit
// The path ID, when present, takes precedence over examId in the body.
func (h *ExamHandler) Submit(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	var req model.SubmitExamRequest
	if errs := validator.Bind(c, &req); errs != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, "", errs)
		return
	}

	rawID := c.Param("id")
	if rawID == "" {
		rawID = req.ExamID
	}
	if rawID == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, "",
			map[string]string{"examId": "examId is required"})
		return
	}
	examID, err := uuid.Parse(rawID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	resp, err := h.exams.SubmitExam(c.Request.Context(), p.UserID, examID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ToggleStatus godoc
// PATCH /api/exams/:id/status
func (h *ExamHandler) ToggleStatus(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	examID, ok := validator.ParamUUID(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.exams.ToggleExamStatus(c.Request.Context(), p.UserID, examID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, exam)
}
