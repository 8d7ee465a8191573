package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

// DefaultMoreQuestions is how many questions AddMoreQuestions asks for
// when n is not positive.
const DefaultMoreQuestions = 5

var (
	// ErrNotLoaded is returned by operations that need Load to have
	// succeeded first.
	ErrNotLoaded = errors.New("client: session not loaded")
	// ErrBusy is returned by AddMoreQuestions while another call is in
	// flight.
	ErrBusy = errors.New("client: add more questions already in progress")
	// ErrNoQuestions means generate answered 2xx without a usable list.
	ErrNoQuestions = errors.New("client: generated question list is empty")
	// ErrUnknownQuestion means the id is not in the loaded session.
	ErrUnknownQuestion = errors.New("client: question not in session")
)

// PinState tracks the last optimistic pin change made to a question.
type PinState int

const (
	PinIdle PinState = iota
	// PinPending: the local flag is flipped and the request is in flight.
	PinPending
	// PinConfirmed: the server accepted the change.
	PinConfirmed
	// PinReverted: the request failed and the view was refetched.
	PinReverted
)

func (s PinState) String() string {
	switch s {
	case PinPending:
		return "pending"
	case PinConfirmed:
		return "confirmed"
	case PinReverted:
		return "reverted"
	default:
		return "idle"
	}
}

// API is the part of Client the Synchronizer calls.
type API interface {
	GetSession(ctx context.Context, id string) (*model.Session, error)
	TogglePin(ctx context.Context, questionID string) (*model.Question, error)
	UpdateNote(ctx context.Context, questionID, note string) (*model.Question, error)
	GenerateQuestions(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	AddQuestions(ctx context.Context, sessionID string, qs []model.QuestionInput) ([]model.Question, error)
}

// Synchronizer holds the local view of one session.
//
// Every mutation is followed by a full refetch, so the view converges on
// the server's copy even when local edits and server state disagree. The
// view is guarded by a mutex; network calls run without holding it.
type Synchronizer struct {
	api       API
	sessionID string

	mu      sync.Mutex
	session *model.Session
	pins    map[string]PinState
	busy    bool
}

func NewSynchronizer(api API, sessionID string) *Synchronizer {
	return &Synchronizer{api: api, sessionID: sessionID, pins: make(map[string]PinState)}
}

// Session returns a copy of the current view, or nil before Load.
func (s *Synchronizer) Session() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.session)
}

// PinState reports the last pin change made to questionID.
func (s *Synchronizer) PinState(questionID string) PinState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pins[questionID]
}

// Busy reports whether AddMoreQuestions is in flight.
func (s *Synchronizer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Load replaces the view with the server's copy. On failure the view is
// kept as it was.
func (s *Synchronizer) Load(ctx context.Context) error {
	fresh, err := s.api.GetSession(ctx, s.sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.session = fresh
	s.mu.Unlock()
	return nil
}

// TogglePin flips the question locally, re-sorts, and then asks the
// server. Success refetches the session; failure marks the question
// reverted, refetches the authoritative copy and returns the error.
func (s *Synchronizer) TogglePin(ctx context.Context, questionID string) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	found := false
	for i := range s.session.Questions {
		if s.session.Questions[i].ID == questionID {
			s.session.Questions[i].IsPinned = !s.session.Questions[i].IsPinned
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrUnknownQuestion
	}
	model.SortQuestions(s.session.Questions)
	s.pins[questionID] = PinPending
	s.mu.Unlock()

	if _, err := s.api.TogglePin(ctx, questionID); err != nil {
		s.setPin(questionID, PinReverted)
		if loadErr := s.Load(ctx); loadErr != nil {
			return errors.Join(err, fmt.Errorf("client: rolling back pin: %w", loadErr))
		}
		return err
	}

	s.setPin(questionID, PinConfirmed)
	return s.Load(ctx)
}

// AddMoreQuestions generates n more questions for the session's role and
// topics, appends them on the server and refetches. The local question list
// is only replaced by that final refetch, so any failure leaves it as it
// was.
func (s *Synchronizer) AddMoreQuestions(ctx context.Context, n int) error {
	if n <= 0 {
		n = DefaultMoreQuestions
	}

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	req := GenerateRequest{
		Role:              s.session.Role,
		Experience:        s.session.Experience,
		TopicsToFocus:     s.session.TopicsToFocus,
		NumberOfQuestions: n,
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	gen, err := s.api.GenerateQuestions(ctx, req)
	if err != nil {
		return err
	}
	if gen == nil || len(gen.Questions) == 0 {
		return ErrNoQuestions
	}

	qs := make([]model.QuestionInput, len(gen.Questions))
	for i, q := range gen.Questions {
		qs[i] = q.WithDefaults()
	}
	if _, err := s.api.AddQuestions(ctx, s.sessionID, qs); err != nil {
		return err
	}
	return s.Load(ctx)
}

// UpdateNote saves the note and refetches.
func (s *Synchronizer) UpdateNote(ctx context.Context, questionID, note string) error {
	if _, err := s.api.UpdateNote(ctx, questionID, note); err != nil {
		return err
	}
	return s.Load(ctx)
}

func (s *Synchronizer) setPin(questionID string, state PinState) {
	s.mu.Lock()
	s.pins[questionID] = state
	s.mu.Unlock()
}

func copySession(in *model.Session) *model.Session {
	if in == nil {
		return nil
	}
	out := *in
	out.Questions = append([]model.Question(nil), in.Questions...)
	return &out
}

// SessionCreator is the part of Client NewSession calls.
type SessionCreator interface {
	GenerateQuestions(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	CreateSession(ctx context.Context, req CreateSessionRequest) (*model.Session, error)
}

// NewSessionInput describes a session to generate and store.
type NewSessionInput struct {
	Title             string
	Role              string
	Experience        string
	TopicsToFocus     string
	Description       string
	NumberOfQuestions int
	Difficulty        string
}

// NewSession generates questions for in and creates a session holding them.
func NewSession(ctx context.Context, api SessionCreator, in NewSessionInput) (*model.Session, error) {
	gen, err := api.GenerateQuestions(ctx, GenerateRequest{
		Role:              in.Role,
		Experience:        in.Experience,
		TopicsToFocus:     in.TopicsToFocus,
		NumberOfQuestions: in.NumberOfQuestions,
		Difficulty:        in.Difficulty,
	})
	if err != nil {
		return nil, fmt.Errorf("client: generating questions: %w", err)
	}
	if gen == nil || len(gen.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	return api.CreateSession(ctx, CreateSessionRequest{
		Title:         in.Title,
		Role:          in.Role,
		Experience:    in.Experience,
		TopicsToFocus: in.TopicsToFocus,
		Description:   in.Description,
		Questions:     gen.Questions,
	})
}
