package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
	"github.com/YadavAkhileshh/CrackBano/internal/cache"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
	"github.com/YadavAkhileshh/CrackBano/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces.
// They return copies so a test cannot mutate stored state through a
// returned pointer, and they report misses with apperror.NotFound exactly
// like the sqlite package.

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]*model.User
	nextID  int

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	email := strings.ToLower(user.Email)
	if _, ok := f.byEmail[email]; ok {
		return apperror.Conflict("user", email)
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.Email = email
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	f.byID[user.ID] = &stored
	f.byEmail[email] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	out := *u
	return &out, nil
}

// fakeStore implements both SessionRepository and QuestionRepository over
// shared maps, mirroring the single *sqlite.DB.
type fakeStore struct {
	mu        sync.Mutex
	sessions  map[string]*model.Session
	questions map[string]*model.Question
	nextID    int

	getSessionCalls int
	failWith        error
	// afterGetSession runs once the session has been read, outside the
	// lock, to interleave a write with a read.
	afterGetSession func()
}

var (
	_ repository.SessionRepository  = (*fakeStore)(nil)
	_ repository.QuestionRepository = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:  make(map[string]*model.Session),
		questions: make(map[string]*model.Question),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%03d", prefix, f.nextID)
}

func (f *fakeStore) CreateSession(_ context.Context, session *model.Session, inputs []model.QuestionInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	session.ID = f.id("session")
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt
	stored := *session
	stored.Questions = nil
	f.sessions[session.ID] = &stored

	session.Questions = f.insert(session.ID, session.UserID, inputs)
	model.SortQuestions(session.Questions)
	return nil
}

func (f *fakeStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s, err := f.getSession(ctx, id)
	f.mu.Lock()
	hook := f.afterGetSession
	f.afterGetSession = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return s, err
}

func (f *fakeStore) getSession(_ context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getSessionCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	out := *s
	out.Questions = f.questionsWhere(func(q *model.Question) bool { return q.SessionID == id })
	return &out, nil
}

func (f *fakeStore) ListSessionsByUser(_ context.Context, userID string) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Session{}
	for _, s := range f.sessions {
		if s.UserID != userID {
			continue
		}
		cp := *s
		cp.Questions = f.questionsWhere(func(q *model.Question) bool { return q.SessionID == s.ID })
		out = append(out, cp)
	}
	// ids are sequential, so descending id is newest first
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ID > out[j-1].ID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return 0, apperror.NotFound("session", id)
	}
	delete(f.sessions, id)
	var n int64
	for qid, q := range f.questions {
		if q.SessionID == id {
			delete(f.questions, qid)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) AddQuestions(_ context.Context, sessionID, userID string, inputs []model.QuestionInput) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, ok := f.sessions[sessionID]; !ok {
		return nil, apperror.NotFound("session", sessionID)
	}
	return f.insert(sessionID, userID, inputs), nil
}

func (f *fakeStore) GetQuestion(_ context.Context, id string) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, apperror.NotFound("question", id)
	}
	out := *q
	return &out, nil
}

func (f *fakeStore) TogglePin(_ context.Context, id string) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, apperror.NotFound("question", id)
	}
	q.IsPinned = !q.IsPinned
	out := *q
	return &out, nil
}

func (f *fakeStore) UpdateNote(_ context.Context, id, note string) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, apperror.NotFound("question", id)
	}
	q.Note = note
	out := *q
	return &out, nil
}

func (f *fakeStore) ListPinnedByUser(_ context.Context, userID string) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.questionsWhere(func(q *model.Question) bool { return q.UserID == userID && q.IsPinned }), nil
}

// insert must be called with f.mu held.
func (f *fakeStore) insert(sessionID, userID string, inputs []model.QuestionInput) []model.Question {
	created := make([]model.Question, 0, len(inputs))
	for _, in := range inputs {
		in = in.WithDefaults()
		q := model.Question{
			ID:         f.id("question"),
			SessionID:  sessionID,
			UserID:     userID,
			Question:   in.Question,
			Answer:     in.Answer,
			Topic:      in.Topic,
			Difficulty: in.Difficulty,
			Type:       in.Type,
			CreatedAt:  time.Now().UTC(),
		}
		q.UpdatedAt = q.CreatedAt
		stored := q
		f.questions[q.ID] = &stored
		created = append(created, q)
	}
	return created
}

// questionsWhere must be called with f.mu held.
func (f *fakeStore) questionsWhere(keep func(*model.Question) bool) []model.Question {
	out := []model.Question{}
	for _, q := range f.questions {
		if keep(q) {
			out = append(out, *q)
		}
	}
	model.SortQuestions(out)
	return out
}

// =========================================================================
// FAKE CACHE
// =========================================================================

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]model.Session
	versions    map[string]int64
	invalidated []string
	err         error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]model.Session), versions: make(map[string]int64)}
}

func (c *fakeCache) Version(_ context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.versions[id], nil
}

func (c *fakeCache) Get(_ context.Context, id string) (*model.Session, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	s, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

func (c *fakeCache) Set(_ context.Context, s *model.Session, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.versions[s.ID] != version {
		return cache.ErrStale
	}
	c.entries[s.ID] = *s
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, id)
	c.versions[id]++
	delete(c.entries, id)
	return c.err
}

func (c *fakeCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleQuestions(n int) []model.QuestionInput {
	qs := make([]model.QuestionInput, n)
	for i := range qs {
		qs[i] = model.QuestionInput{
			Question: fmt.Sprintf("Question %d?", i+1),
			Answer:   fmt.Sprintf("Answer %d.", i+1),
		}
	}
	return qs
}
