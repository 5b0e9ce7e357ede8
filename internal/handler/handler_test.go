package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/examify/examify-backend/internal/logger"
	"github.com/examify/examify-backend/internal/middleware"
	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/response"
	"github.com/examify/examify-backend/internal/service"
	"github.com/examify/examify-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

var (
	studentID  = uuid.New()
	examinerID = uuid.New()
)

type stubAuth struct{}

func (stubAuth) Authenticate(_ context.Context, token string) (*service.Principal, error) {
	switch token {
	case "student":
		return &service.Principal{UserID: studentID, Role: model.RoleStudent, Username: "alice", SessionID: "s1"}, nil
	case "examiner":
		return &service.Principal{UserID: examinerID, Role: model.RoleExaminer, Username: "smith", SessionID: "s2"}, nil
	}
	return nil, errors.New("bad token")
}

type stubAccounts struct {
	registerErr error
	loginErr    error
	loggedOut   []service.Principal
}

func (s *stubAccounts) Register(_ context.Context, req model.RegisterRequest) (*model.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &model.User{ID: uuid.New(), Username: req.Username, Role: req.Role, PasswordHash: "hash"}, nil
}

func (s *stubAccounts) Login(_ context.Context, username, _ string) (*model.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &model.LoginResponse{Token: "tok", Role: model.RoleStudent, Username: username}, nil
}

func (s *stubAccounts) Logout(_ context.Context, p service.Principal) error {
	s.loggedOut = append(s.loggedOut, p)
	return nil
}

func (s *stubAccounts) Profile(_ context.Context, id uuid.UUID) (*model.User, error) {
	return &model.User{ID: id, Username: "alice", Role: model.RoleStudent}, nil
}

type stubExams struct {
	mu        sync.Mutex
	exam      *model.Exam
	getErr    error
	submitErr error
	submitted []uuid.UUID
}

func (s *stubExams) CreateExam(_ context.Context, examiner uuid.UUID, req model.CreateExamRequest) (*model.Exam, error) {
	if req.Title == "" {
		return nil, &service.ValidationError{Message: "invalid exam", Fields: map[string]string{"title": "title is required"}}
	}
	return &model.Exam{ID: uuid.New(), Title: req.Title, CreatedBy: examiner, Status: model.ExamStatusActive, Questions: req.Questions}, nil
}

func (s *stubExams) ListExams(context.Context, uuid.UUID, model.Role) ([]model.Exam, error) {
	return nil, nil
}

func (s *stubExams) GetExam(context.Context, uuid.UUID, uuid.UUID, model.Role) (*model.Exam, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.exam, nil
}

func (s *stubExams) SubmitExam(_ context.Context, _, examID uuid.UUID, req model.SubmitExamRequest) (*model.SubmitExamResponse, error) {
	s.mu.Lock()
	s.submitted = append(s.submitted, examID)
	s.mu.Unlock()
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &model.SubmitExamResponse{Score: len(req.Answers), Passed: true, AutoSubmitted: req.AutoSubmitted}, nil
}

func (s *stubExams) ToggleExamStatus(_ context.Context, examiner, _ uuid.UUID) (*model.Exam, error) {
	if examiner != s.exam.CreatedBy {
		return nil, &service.ForbiddenError{Reason: "you can only change the status of your own exams"}
	}
	e := *s.exam
	e.Status = e.Status.Toggled()
	return &e, nil
}

func (s *stubExams) ListAllExams(_ context.Context, role model.Role) ([]model.Exam, error) {
	if role != model.RoleExaminer {
		return nil, &service.ForbiddenError{Reason: "only examiners can list all exams"}
	}
	return []model.Exam{*s.exam}, nil
}

func (s *stubExams) ExamOverview(_ context.Context, examiner, _ uuid.UUID) (*model.Exam, int, error) {
	if examiner != s.exam.CreatedBy {
		return nil, 0, &service.ForbiddenError{}
	}
	return s.exam, 2, nil
}

type stubResults struct {
	renderErr error
}

func (s *stubResults) ListResults(context.Context, uuid.UUID) ([]model.ResultWithExam, error) {
	return nil, nil
}

func (s *stubResults) RenderCertificate(_ context.Context, resultID, requester uuid.UUID) (*service.RenderedCertificate, error) {
	if s.renderErr != nil {
		return nil, s.renderErr
	}
	if requester != studentID {
		return nil, &service.ForbiddenError{Reason: "you do not have access to this certificate"}
	}
	return &service.RenderedCertificate{Filename: "certificate-" + resultID.String() + ".pdf", Content: []byte("%PDF-1.4")}, nil
}

type testServer struct {
	engine   *gin.Engine
	accounts *stubAccounts
	exams    *stubExams
	results  *stubResults
}

func newTestServer() *testServer {
	log := logger.Nop()
	ts := &testServer{
		accounts: &stubAccounts{},
		exams: &stubExams{exam: &model.Exam{
			ID: uuid.New(), Title: "Go Basics", CreatedBy: examinerID, Status: model.ExamStatusActive,
			Questions: []model.Question{{Question: "q", Options: []string{"a", "b"}, Answer: "a"}},
		}},
		results: &stubResults{},
	}

	authH := NewAuthHandler(ts.accounts, log)
	examH := NewExamHandler(ts.exams, log)
	resultH := NewResultHandler(ts.results, log)

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.POST("/api/auth/register", authH.Register)
	r.POST("/api/auth/login", authH.Login)

	api := r.Group("/api", middleware.RequireAuth(stubAuth{}))
	api.POST("/auth/logout", authH.Logout)
	api.GET("/auth/me", authH.Me)
	api.POST("/exams", middleware.RequireRole(model.RoleExaminer), examH.Create)
	api.GET("/exams", examH.List)
	api.GET("/exams/all", examH.ListAll)
	api.POST("/exams/submit", examH.Submit)
	api.GET("/exams/:id", examH.Get)
	api.POST("/exams/:id/submit", examH.Submit)
	api.PATCH("/exams/:id/status", middleware.RequireRole(model.RoleExaminer), examH.ToggleStatus)
	api.GET("/results", resultH.List)
	api.GET("/results/certificate/:resultId", resultH.Certificate)
	api.POST("/certificate/generate", resultH.GenerateCertificate)

	ts.engine = r
	return ts
}

func (ts *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Code      response.ErrCode  `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields"`
	Result    *model.Result     `json:"result"`
	RequestID string            `json:"request_id"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "password": "secret1", "role": "student"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "hash") {
		t.Error("password hash leaked in register response")
	}

	w = ts.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "al", "password": "1", "role": "admin"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid register status = %d", w.Code)
	}
	body := decodeError(t, w)
	for _, f := range []string{"username", "password", "role"} {
		if body.Fields[f] == "" {
			t.Errorf("missing field error for %q: %v", f, body.Fields)
		}
	}

	ts.accounts.registerErr = service.ErrUsernameTaken
	w = ts.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "password": "secret1", "role": "student"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}

	w = ts.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	var login model.LoginResponse
	_ = json.Unmarshal(w.Body.Bytes(), &login)
	if login.Token != "tok" || login.Username != "alice" || login.Role != model.RoleStudent {
		t.Errorf("login body = %+v", login)
	}

	ts.accounts.loginErr = service.ErrInvalidCredentials
	w = ts.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "bad"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}

	w = ts.do(http.MethodPost, "/api/auth/logout", "student", nil)
	if w.Code != http.StatusOK || len(ts.accounts.loggedOut) != 1 {
		t.Errorf("logout status = %d, logged out %d", w.Code, len(ts.accounts.loggedOut))
	}

	w = ts.do(http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me without token status = %d", w.Code)
	}
}

func TestCreateExamEndpoint(t *testing.T) {
	ts := newTestServer()
	req := gin.H{"title": "New", "questions": []gin.H{{"question": "q", "options": []string{"a"}, "answer": "a"}}}

	if w := ts.do(http.MethodPost, "/api/exams", "student", req); w.Code != http.StatusForbidden {
		t.Errorf("student create status = %d, want 403", w.Code)
	}

	w := ts.do(http.MethodPost, "/api/exams", "examiner", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var exam model.Exam
	_ = json.Unmarshal(w.Body.Bytes(), &exam)
	if exam.Status != model.ExamStatusActive || exam.CreatedBy != examinerID {
		t.Errorf("created exam = %+v", exam)
	}

	w = ts.do(http.MethodPost, "/api/exams", "examiner", gin.H{"questions": []gin.H{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid create status = %d", w.Code)
	}
	if body := decodeError(t, w); body.Code != response.ErrValidation || body.Fields["title"] == "" {
		t.Errorf("invalid create body = %+v", body)
	}
}

func TestListEndpointsReturnArrays(t *testing.T) {
	ts := newTestServer()

	for _, path := range []string{"/api/exams", "/api/results"} {
		w := ts.do(http.MethodGet, path, "student", nil)
		if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
			t.Errorf("%s = %d %s, want empty array", path, w.Code, w.Body.String())
		}
	}

	if w := ts.do(http.MethodGet, "/api/exams/all", "student", nil); w.Code != http.StatusForbidden {
		t.Errorf("student list all status = %d, want 403", w.Code)
	}
	if w := ts.do(http.MethodGet, "/api/exams/all", "examiner", nil); w.Code != http.StatusOK {
		t.Errorf("examiner list all status = %d", w.Code)
	}
}

func TestGetExamEndpoint(t *testing.T) {
	ts := newTestServer()
	path := "/api/exams/" + ts.exams.exam.ID.String()

	if w := ts.do(http.MethodGet, path, "student", nil); w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/api/exams/not-a-uuid", "student", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", w.Code)
	}

	ts.exams.getErr = &service.NotFoundError{Resource: "exam"}
	w := ts.do(http.MethodGet, path, "student", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing exam status = %d", w.Code)
	}
	if body := decodeError(t, w); body.Message != "Exam not found" {
		t.Errorf("message = %q", body.Message)
	}

	prior := &model.Result{ID: uuid.New(), Score: 4, Passed: true}
	ts.exams.getErr = &service.AlreadyCompletedError{Result: prior}
	w = ts.do(http.MethodGet, path, "student", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("completed status = %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Code != response.ErrAlreadyCompleted || body.Result == nil || body.Result.ID != prior.ID {
		t.Errorf("completed body = %+v", body)
	}
	if body.RequestID == "" {
		t.Error("error body missing request_id")
	}
}

func TestSubmitEndpoint(t *testing.T) {
	ts := newTestServer()
	pathID := ts.exams.exam.ID
	bodyID := uuid.New()

	w := ts.do(http.MethodPost, "/api/exams/submit", "student", gin.H{"examId": bodyID, "answers": []string{"a", "b"}})
	if w.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", w.Code, w.Body.String())
	}
	var resp model.SubmitExamResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Score != 2 || !resp.Passed {
		t.Errorf("submit body = %+v", resp)
	}

	w = ts.do(http.MethodPost, "/api/exams/"+pathID.String()+"/submit", "student", gin.H{"examId": bodyID, "answers": []string{}})
	if w.Code != http.StatusOK {
		t.Fatalf("path submit status = %d", w.Code)
	}
	if got := ts.exams.submitted[len(ts.exams.submitted)-1]; got != pathID {
		t.Errorf("submitted exam %v, want path id %v", got, pathID)
	}

	if w := ts.do(http.MethodPost, "/api/exams/submit", "student", gin.H{"answers": []string{}}); w.Code != http.StatusBadRequest {
		t.Errorf("missing exam id status = %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/api/exams/submit", "student", gin.H{"examId": bodyID, "tabSwitches": -1}); w.Code != http.StatusBadRequest {
		t.Errorf("negative tabSwitches status = %d", w.Code)
	}

	prior := &model.Result{ID: uuid.New(), Score: 1}
	ts.exams.submitErr = &service.DuplicateSubmissionError{Result: prior}
	w = ts.do(http.MethodPost, "/api/exams/submit", "student", gin.H{"examId": bodyID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d", w.Code)
	}
	if body := decodeError(t, w); body.Code != response.ErrDuplicateSubmission || body.Result == nil || body.Result.ID != prior.ID {
		t.Errorf("duplicate body = %+v", body)
	}

	ts.exams.submitErr = errors.New("database is down")
	if w := ts.do(http.MethodPost, "/api/exams/submit", "student", gin.H{"examId": bodyID}); w.Code != http.StatusInternalServerError {
		t.Errorf("internal error status = %d", w.Code)
	}
}

func TestToggleStatusEndpoint(t *testing.T) {
	ts := newTestServer()
	path := "/api/exams/" + ts.exams.exam.ID.String() + "/status"

	w := ts.do(http.MethodPatch, path, "examiner", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", w.Code)
	}
	var exam model.Exam
	_ = json.Unmarshal(w.Body.Bytes(), &exam)
	if exam.Status != model.ExamStatusInactive {
		t.Errorf("status = %q, want inactive", exam.Status)
	}

	if w := ts.do(http.MethodPatch, path, "student", nil); w.Code != http.StatusForbidden {
		t.Errorf("student toggle status = %d, want 403", w.Code)
	}
}

func TestCertificateEndpoints(t *testing.T) {
	ts := newTestServer()
	resultID := uuid.New()

	w := ts.do(http.MethodGet, "/api/results/certificate/"+resultID.String(), "student", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("certificate status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	wantDisposition := `attachment; filename="certificate-` + resultID.String() + `.pdf"`
	if cd := w.Header().Get("Content-Disposition"); cd != wantDisposition {
		t.Errorf("Content-Disposition = %q, want %q", cd, wantDisposition)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Error("body is not a PDF")
	}

	w = ts.do(http.MethodPost, "/api/certificate/generate", "student", gin.H{"resultId": resultID})
	if w.Code != http.StatusOK {
		t.Errorf("generate status = %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/api/certificate/generate", "student", gin.H{"resultId": "nope"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad resultId status = %d", w.Code)
	}

	if w := ts.do(http.MethodGet, "/api/results/certificate/"+resultID.String(), "examiner", nil); w.Code != http.StatusForbidden {
		t.Errorf("stranger certificate status = %d, want 403", w.Code)
	}

	ts.results.renderErr = errors.New("font failure")
	w = ts.do(http.MethodGet, "/api/results/certificate/"+resultID.String(), "student", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("render failure status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("render failure Content-Type = %q, want JSON", ct)
	}
	if w.Header().Get("Content-Disposition") != "" {
		t.Error("render failure must not send attachment headers")
	}
}
