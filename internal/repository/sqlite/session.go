package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
	"github.com/YadavAkhileshh/CrackBano/internal/repository"
)

var _ repository.SessionRepository = (*DB)(nil)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const sessionColumns = `id, user_id, title, role, experience, topics_to_focus, description, created_at, updated_at`

// CreateSession inserts the session and its questions in one transaction.
// On success session.ID, timestamps and session.Questions are populated.
func (db *DB) CreateSession(ctx context.Context, session *model.Session, questions []model.QuestionInput) error {
	now := time.Now().UTC()
	session.ID = xid.New().String()
	session.CreatedAt = now
	session.UpdatedAt = now

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (`+sessionColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			session.ID,
			session.UserID,
			session.Title,
			session.Role,
			session.Experience,
			session.TopicsToFocus,
			session.Description,
			session.CreatedAt,
			session.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting session: %w", err)
		}

		created, err := insertQuestions(ctx, tx, session.ID, session.UserID, questions)
		if err != nil {
			return err
		}
		session.Questions = created
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating session: %w", err)
	}

	model.SortQuestions(session.Questions)
	return nil
}

// GetSession returns a session with its questions in display order.
// Ownership is not checked here; that is the service's job.
func (db *DB) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}

	qs, err := db.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE session_id = ? `+questionOrder, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading questions for session %s: %w", id, err)
	}
	s.Questions = qs
	return s, nil
}

// ListSessionsByUser returns every session owned by userID, newest first,
// each with its questions populated.
//
// Questions are fetched with a single query for all of the user's rows and
// grouped in memory.
func (db *DB) ListSessionsByUser(ctx context.Context, userID string) ([]model.Session, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing sessions for user %s: %w", userID, err)
	}

	var sessions []model.Session
	index := make(map[string]int)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning session row: %w", err)
		}
		s.Questions = []model.Question{}
		index[s.ID] = len(sessions)
		sessions = append(sessions, *s)
	}
	// Close before the next query: with a single-connection pool an open
	// cursor would block it.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating sessions: %w", err)
	}
	if len(sessions) == 0 {
		return []model.Session{}, nil
	}

	qs, err := db.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE user_id = ? `+questionOrder, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading questions for user %s: %w", userID, err)
	}
	for _, q := range qs {
		if i, ok := index[q.SessionID]; ok {
			sessions[i].Questions = append(sessions[i].Questions, q)
		}
	}

	return sessions, nil
}

// DeleteSession removes the session and every question that references it,
// in one transaction. Returns the number of questions deleted.
func (db *DB) DeleteSession(ctx context.Context, id string) (int64, error) {
	var deleted int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting session: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("session", id)
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM questions WHERE session_id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting questions: %w", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}
	return deleted, nil
}

func scanSession(row scanner) (*model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Title,
		&s.Role,
		&s.Experience,
		&s.TopicsToFocus,
		&s.Description,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
