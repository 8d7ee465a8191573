package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
	"github.com/YadavAkhileshh/CrackBano/internal/cache"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
	"github.com/YadavAkhileshh/CrackBano/internal/repository"
)

const (
	resourceQuestion = "question"

	// MaxNoteLength is the longest note UpdateNote accepts, in runes.
	MaxNoteLength = 5000
)

// QuestionService appends questions to sessions and mutates single
// questions on behalf of their owner.
type QuestionService struct {
	sessions  repository.SessionRepository
	questions repository.QuestionRepository
	cache     cache.Sessions
	logger    *slog.Logger
}

func NewQuestionService(
	sessions repository.SessionRepository,
	questions repository.QuestionRepository,
	sc cache.Sessions,
	logger *slog.Logger,
) *QuestionService {
	if sc == nil {
		sc = cache.Nop{}
	}
	return &QuestionService{
		sessions:  sessions,
		questions: questions,
		cache:     sc,
		logger:    logger,
	}
}

// Add appends questions to a session the caller owns. A missing session is
// apperror.ErrNotFound and a foreign one apperror.ErrForbidden.
func (s *QuestionService) Add(ctx context.Context, owner, sessionID string, qs []model.QuestionInput) ([]model.Question, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || len(qs) == 0 {
		return nil, apperror.ValidationFailed("questions", "invalid request data")
	}
	if err := validateQuestions(qs); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound(resourceSession, sessionID)
		}
		return nil, fmt.Errorf("service/question: getting session %s: %w", sessionID, err)
	}
	if session.UserID != owner {
		return nil, apperror.Forbidden("not authorized to add questions to this session")
	}

	created, err := s.questions.AddQuestions(ctx, sessionID, session.UserID, qs)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound(resourceSession, sessionID)
		}
		return nil, fmt.Errorf("service/question: adding questions to session %s: %w", sessionID, err)
	}
	invalidateSession(ctx, s.cache, s.logger, sessionID)

	s.logger.Info("questions added",
		slog.String("sessionID", sessionID),
		slog.String("userID", owner),
		slog.Int("count", len(created)),
	)
	return created, nil
}

// TogglePin flips the pinned flag on a question the caller owns.
func (s *QuestionService) TogglePin(ctx context.Context, owner, id string) (*model.Question, error) {
	q, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.questions.TogglePin(ctx, q.ID)
	if err != nil {
		return nil, s.mutationErr("toggling pin", id, err)
	}
	invalidateSession(ctx, s.cache, s.logger, updated.SessionID)
	return updated, nil
}

// UpdateNote replaces the note on a question the caller owns. An empty
// note clears it.
func (s *QuestionService) UpdateNote(ctx context.Context, owner, id, note string) (*model.Question, error) {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return nil, apperror.ValidationFailed("note",
			fmt.Sprintf("note must be %d characters or fewer", MaxNoteLength))
	}
	q, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.questions.UpdateNote(ctx, q.ID, note)
	if err != nil {
		return nil, s.mutationErr("updating note", id, err)
	}
	invalidateSession(ctx, s.cache, s.logger, updated.SessionID)
	return updated, nil
}

// ListPinned returns the caller's pinned questions across all sessions.
func (s *QuestionService) ListPinned(ctx context.Context, owner string) ([]model.Question, error) {
	qs, err := s.questions.ListPinnedByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("service/question: listing pinned for user %s: %w", owner, err)
	}
	return qs, nil
}

// owned loads a question and checks question.user == owner. Missing and
// foreign questions get the same error.
func (s *QuestionService) owned(ctx context.Context, owner, id string) (*model.Question, error) {
	if id == "" {
		return nil, apperror.NotFoundOrDenied(resourceQuestion)
	}
	q, err := s.questions.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundOrDenied(resourceQuestion)
		}
		return nil, fmt.Errorf("service/question: getting question %s: %w", id, err)
	}
	if q.UserID != owner {
		s.logger.Info("question access denied",
			slog.String("questionID", id),
			slog.String("userID", owner),
		)
		return nil, apperror.NotFoundOrDenied(resourceQuestion)
	}
	return q, nil
}

func (s *QuestionService) mutationErr(action, id string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.NotFoundOrDenied(resourceQuestion)
	}
	return fmt.Errorf("service/question: %s on question %s: %w", action, id, err)
}
