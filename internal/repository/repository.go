// Package repository declares the storage contracts used by the service
// layer. internal/repository/sqlite implements all of them on one *DB.
package repository

import (
	"context"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository persists sessions together with their questions.
//
// CreateSession and DeleteSession are single transactions: either the
// session and all of its questions are written/removed, or nothing is.
// Reads return sessions with Questions populated in display order.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session, questions []model.QuestionInput) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]model.Session, error)
	DeleteSession(ctx context.Context, id string) (deletedQuestions int64, err error)
}

// QuestionRepository handles question rows directly.
//
// AddQuestions binds every new row to sessionID and userID; the caller is
// responsible for passing the session owner as userID.
type QuestionRepository interface {
	AddQuestions(ctx context.Context, sessionID, userID string, questions []model.QuestionInput) ([]model.Question, error)
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
	TogglePin(ctx context.Context, id string) (*model.Question, error)
	UpdateNote(ctx context.Context, id, note string) (*model.Question, error)
	ListPinnedByUser(ctx context.Context, userID string) ([]model.Question, error)
}
