package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
	"github.com/YadavAkhileshh/CrackBano/internal/cache"
	"github.com/YadavAkhileshh/CrackBano/internal/metrics"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
	"github.com/YadavAkhileshh/CrackBano/internal/repository"
)

const resourceSession = "session"

// SessionService owns session lifecycle and enforces that callers only see
// and delete their own sessions.
type SessionService struct {
	sessions repository.SessionRepository
	cache    cache.Sessions
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewSessionService wires the service. A nil cache or recorder is replaced
// by its Nop.
func NewSessionService(
	sessions repository.SessionRepository,
	sc cache.Sessions,
	rec metrics.Recorder,
	logger *slog.Logger,
) *SessionService {
	if sc == nil {
		sc = cache.Nop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &SessionService{
		sessions: sessions,
		cache:    sc,
		metrics:  rec,
		logger:   logger,
	}
}

type CreateSessionInput struct {
	Title         string
	Role          string
	Experience    string
	TopicsToFocus string
	Description   string
	Questions     []model.QuestionInput
}

// Create persists a session with its initial questions. Role, experience,
// topics and at least one complete question are required.
func (s *SessionService) Create(ctx context.Context, owner string, in CreateSessionInput) (*model.Session, error) {
	session := &model.Session{
		UserID:        owner,
		Title:         strings.TrimSpace(in.Title),
		Role:          strings.TrimSpace(in.Role),
		Experience:    strings.TrimSpace(in.Experience),
		TopicsToFocus: strings.Join(model.SplitTopics(in.TopicsToFocus), ", "),
		Description:   strings.TrimSpace(in.Description),
	}

	switch {
	case session.Role == "":
		return nil, apperror.ValidationFailed("role", "role is required")
	case session.Experience == "":
		return nil, apperror.ValidationFailed("experience", "experience is required")
	case session.TopicsToFocus == "":
		return nil, apperror.ValidationFailed("topicsToFocus", "topicsToFocus is required")
	}
	if err := validateQuestions(in.Questions); err != nil {
		return nil, err
	}

	if err := s.sessions.CreateSession(ctx, session, in.Questions); err != nil {
		return nil, fmt.Errorf("service/session: creating session: %w", err)
	}

	s.logger.Info("session created",
		slog.String("sessionID", session.ID),
		slog.String("userID", owner),
		slog.Int("questions", len(session.Questions)),
	)
	return session, nil
}

// List returns the caller's sessions, newest first.
func (s *SessionService) List(ctx context.Context, owner string) ([]model.Session, error) {
	sessions, err := s.sessions.ListSessionsByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("service/session: listing sessions for user %s: %w", owner, err)
	}
	return sessions, nil
}

// Get returns a session the caller owns. A missing session and someone
// else's session produce the same apperror.NotFoundOrDenied.
func (s *SessionService) Get(ctx context.Context, owner, id string) (*model.Session, error) {
	if id == "" {
		return nil, apperror.NotFoundOrDenied(resourceSession)
	}

	if cached, ok := s.cacheGet(ctx, id); ok {
		if cached.UserID != owner {
			return nil, apperror.NotFoundOrDenied(resourceSession)
		}
		return cached, nil
	}

	// The version is read before the load so a write that commits in
	// between makes the Set below a no-op.
	version, verErr := s.cache.Version(ctx, id)

	session, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if verErr != nil {
		s.logger.Warn("session cache version failed", slog.String("sessionID", id), slog.Any("error", verErr))
		return session, nil
	}

	switch err := s.cache.Set(ctx, session, version); {
	case errors.Is(err, cache.ErrStale):
		s.logger.Debug("session changed during read, not cached", slog.String("sessionID", id))
	case err != nil:
		s.logger.Warn("session cache set failed", slog.String("sessionID", id), slog.Any("error", err))
	}
	return session, nil
}

// Delete removes a session the caller owns together with its questions.
func (s *SessionService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.load(ctx, owner, id); err != nil {
		return err
	}

	deleted, err := s.sessions.DeleteSession(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// deleted by a concurrent request
			return apperror.NotFoundOrDenied(resourceSession)
		}
		return fmt.Errorf("service/session: deleting session %s: %w", id, err)
	}
	s.invalidate(ctx, id)

	s.logger.Info("session deleted",
		slog.String("sessionID", id),
		slog.String("userID", owner),
		slog.Int64("questions", deleted),
	)
	return nil
}

// load reads a session from the store and applies the ownership check.
func (s *SessionService) load(ctx context.Context, owner, id string) (*model.Session, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundOrDenied(resourceSession)
		}
		return nil, fmt.Errorf("service/session: getting session %s: %w", id, err)
	}
	if session.UserID != owner {
		s.logger.Info("session access denied",
			slog.String("sessionID", id),
			slog.String("userID", owner),
		)
		return nil, apperror.NotFoundOrDenied(resourceSession)
	}
	return session, nil
}

func (s *SessionService) cacheGet(ctx context.Context, id string) (*model.Session, bool) {
	cached, ok, err := s.cache.Get(ctx, id)
	switch {
	case err != nil:
		s.metrics.RecordCacheLookup("error")
		s.logger.Warn("session cache get failed", slog.String("sessionID", id), slog.Any("error", err))
		return nil, false
	case ok:
		s.metrics.RecordCacheLookup("hit")
		return cached, true
	default:
		s.metrics.RecordCacheLookup("miss")
		return nil, false
	}
}

func (s *SessionService) invalidate(ctx context.Context, id string) {
	invalidateSession(ctx, s.cache, s.logger, id)
}

func invalidateSession(ctx context.Context, sc cache.Sessions, logger *slog.Logger, id string) {
	if err := sc.Invalidate(ctx, id); err != nil {
		logger.Warn("session cache invalidate failed", slog.String("sessionID", id), slog.Any("error", err))
	}
}

// validateQuestions requires a non-empty list where every item has both a
// question and an answer.
func validateQuestions(qs []model.QuestionInput) error {
	if len(qs) == 0 {
		return apperror.ValidationFailed("questions", "questions must be a non-empty array")
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return apperror.ValidationFailed("questions",
				fmt.Sprintf("question %d must have both question and answer", i+1))
		}
	}
	return nil
}
