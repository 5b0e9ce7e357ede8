package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/examify/examify-backend/internal/certificate"
	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/repository"
	"github.com/google/uuid"
)

var baseTime = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = baseTime
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Duration
	err      error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]time.Duration)}
}

func (f *fakeSessionStore) Save(_ context.Context, userID, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[userID+":"+jti] = ttl
	return nil
}

func (f *fakeSessionStore) Exists(_ context.Context, userID, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.sessions[userID+":"+jti]
	return ok, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, userID, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID+":"+jti)
	return nil
}

type fakeExamStore struct {
	mu    sync.Mutex
	exams map[uuid.UUID]*model.Exam
	order []uuid.UUID
	reads int
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{exams: make(map[uuid.UUID]*model.Exam)}
}

func (f *fakeExamStore) Create(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = baseTime.Add(time.Duration(len(f.order)) * time.Minute)
	e.UpdatedAt = e.CreatedAt
	cp := *e
	f.exams[e.ID] = &cp
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	e, ok := f.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// list returns exams newest first that satisfy keep.
func (f *fakeExamStore) list(keep func(*model.Exam) bool) []model.Exam {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Exam
	for i := len(f.order) - 1; i >= 0; i-- {
		e := f.exams[f.order[i]]
		if keep(e) {
			out = append(out, *e)
		}
	}
	return out
}

func (f *fakeExamStore) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]model.Exam, error) {
	return f.list(func(e *model.Exam) bool { return e.CreatedBy == creatorID }), nil
}

func (f *fakeExamStore) ListActiveExcluding(_ context.Context, excluded []uuid.UUID) ([]model.Exam, error) {
	skip := make(map[uuid.UUID]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}
	return f.list(func(e *model.Exam) bool {
		return e.Status == model.ExamStatusActive && !skip[e.ID]
	}), nil
}

func (f *fakeExamStore) ListAll(_ context.Context) ([]model.Exam, error) {
	return f.list(func(*model.Exam) bool { return true }), nil
}

func (f *fakeExamStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.ExamStatus) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.Status = status
	cp := *e
	return &cp, nil
}

type pairKey struct {
	user, exam uuid.UUID
}

type fakeResultStore struct {
	mu      sync.Mutex
	results map[pairKey]*model.Result
	users   map[uuid.UUID]model.UserSummary
	exams   *fakeExamStore

	// raceWinner, when set, is stored just before Create runs, as if a
	// concurrent request inserted it first.
	raceWinner *model.Result
}

func newFakeResultStore(exams *fakeExamStore) *fakeResultStore {
	return &fakeResultStore{
		results: make(map[pairKey]*model.Result),
		users:   make(map[uuid.UUID]model.UserSummary),
		exams:   exams,
	}
}

func (f *fakeResultStore) Create(_ context.Context, res *model.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceWinner != nil {
		f.results[pairKey{f.raceWinner.UserID, f.raceWinner.ExamID}] = f.raceWinner
		f.raceWinner = nil
	}
	key := pairKey{res.UserID, res.ExamID}
	if _, ok := f.results[key]; ok {
		return repository.ErrDuplicateResult
	}
	res.ID = uuid.New()
	cp := *res
	f.results[key] = &cp
	return nil
}

func (f *fakeResultStore) GetByUserAndExam(_ context.Context, userID, examID uuid.UUID) (*model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[pairKey{userID, examID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResultStore) ListExamIDsByUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for k := range f.results {
		if k.user == userID {
			ids = append(ids, k.exam)
		}
	}
	return ids, nil
}

func (f *fakeResultStore) ListByUserWithExam(ctx context.Context, userID uuid.UUID) ([]model.ResultWithExam, error) {
	f.mu.Lock()
	var out []model.ResultWithExam
	for k, r := range f.results {
		if k.user == userID {
			out = append(out, model.ResultWithExam{Result: *r})
		}
	}
	f.mu.Unlock()

	for i := range out {
		exam, err := f.exams.GetByID(ctx, out[i].ExamID)
		if err != nil {
			continue
		}
		ewc := &model.ExamWithCreator{Exam: *exam}
		if creator, ok := f.users[exam.CreatedBy]; ok {
			ewc.Creator = &creator
		}
		out[i].Exam = ewc
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func (f *fakeResultStore) GetCertificateSource(ctx context.Context, resultID uuid.UUID) (*model.CertificateSource, error) {
	f.mu.Lock()
	var found *model.Result
	for _, r := range f.results {
		if r.ID == resultID {
			cp := *r
			found = &cp
		}
	}
	f.mu.Unlock()
	if found == nil {
		return nil, repository.ErrNotFound
	}

	src := &model.CertificateSource{Result: *found}
	if u, ok := f.users[found.UserID]; ok {
		src.User = &u
	}
	if exam, err := f.exams.GetByID(ctx, found.ExamID); err == nil {
		src.Exam = exam
		if c, ok := f.users[exam.CreatedBy]; ok {
			src.Creator = &c
		}
	}
	return src, nil
}

func (f *fakeResultStore) CountByExam(_ context.Context, examID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.results {
		if k.exam == examID {
			n++
		}
	}
	return n, nil
}

type fakeExamCache struct {
	mu          sync.Mutex
	exams       map[uuid.UUID]model.Exam
	invalidated []uuid.UUID
}

func newFakeExamCache() *fakeExamCache {
	return &fakeExamCache{exams: make(map[uuid.UUID]model.Exam)}
}

func (f *fakeExamCache) Get(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (f *fakeExamCache) Set(_ context.Context, exam *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exams[exam.ID] = *exam
	return nil
}

func (f *fakeExamCache) Invalidate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.exams, id)
	f.invalidated = append(f.invalidated, id)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.MonitorEvent
}

func (f *fakePublisher) Publish(_ context.Context, _ uuid.UUID, ev model.MonitorEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type fakeRenderer struct {
	docs []certificate.Document
	err  error
}

func (f *fakeRenderer) Render(doc certificate.Document) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.docs = append(f.docs, doc)
	return []byte("%PDF-fake"), nil
}
