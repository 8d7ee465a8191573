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

var _ repository.QuestionRepository = (*DB)(nil)

const (
	resourceQuestion = "question"

	questionColumns = `id, session_id, user_id, question, answer, topic, difficulty, type, note, is_pinned, created_at, updated_at`
	// the same columns qualified for joins on "q"
	questionColumnsQ = `q.id, q.session_id, q.user_id, q.question, q.answer, q.topic, q.difficulty, q.type, q.note, q.is_pinned, q.created_at, q.updated_at`
	questionOrder   = `ORDER BY is_pinned DESC, created_at DESC, id DESC`
)

// AddQuestions appends questions to an existing session in one
// transaction and bumps the session's updated_at.
// Returns apperror.ErrNotFound if the session row does not exist.
func (db *DB) AddQuestions(ctx context.Context, sessionID, userID string, questions []model.QuestionInput) ([]model.Question, error) {
	var created []model.Question
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE sessions SET updated_at = ? WHERE id = ?`,
			time.Now().UTC(), sessionID)
		if err != nil {
			return fmt.Errorf("touching session: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("session", sessionID)
		}

		created, err = insertQuestions(ctx, tx, sessionID, userID, questions)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: adding questions to session %s: %w", sessionID, err)
	}
	return created, nil
}

// GetQuestion retrieves one question by ID.
func (db *DB) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(resourceQuestion, id)
		}
		return nil, fmt.Errorf("sqlite: getting question %s: %w", id, err)
	}
	return q, nil
}

// TogglePin flips is_pinned with a single UPDATE, so two concurrent toggles
// always produce two flips, then reads the row back.
func (db *DB) TogglePin(ctx context.Context, id string) (*model.Question, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE questions SET is_pinned = 1 - is_pinned, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: toggling pin on question %s: %w", id, err)
	}
	if err := requireRow(res, resourceQuestion, id); err != nil {
		return nil, err
	}
	return db.GetQuestion(ctx, id)
}

// UpdateNote replaces the note. An empty note clears it.
func (db *DB) UpdateNote(ctx context.Context, id, note string) (*model.Question, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE questions SET note = ?, updated_at = ? WHERE id = ?`,
		note, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating note on question %s: %w", id, err)
	}
	if err := requireRow(res, resourceQuestion, id); err != nil {
		return nil, err
	}
	return db.GetQuestion(ctx, id)
}

// ListPinnedByUser returns the user's pinned questions across all sessions,
// newest first. Each carries its session's title, or the session's role
// when the title is blank. Questions whose session is gone are left out.
func (db *DB) ListPinnedByUser(ctx context.Context, userID string) ([]model.Question, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+questionColumnsQ+`, COALESCE(NULLIF(s.title, ''), s.role)
		 FROM questions q JOIN sessions s ON s.id = q.session_id
		 WHERE q.user_id = ? AND q.is_pinned = 1
		 ORDER BY q.created_at DESC, q.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pinned questions for user %s: %w", userID, err)
	}
	defer rows.Close()

	qs := []model.Question{}
	for rows.Next() {
		var title string
		q, err := scanQuestion(rows, &title)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning pinned question: %w", err)
		}
		q.SessionTitle = title
		qs = append(qs, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: listing pinned questions for user %s: %w", userID, err)
	}
	return qs, nil
}

// insertQuestions writes one row per input, applying defaults, and returns
// the stored questions in insertion order.
func insertQuestions(ctx context.Context, tx *sql.Tx, sessionID, userID string, inputs []model.QuestionInput) ([]model.Question, error) {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (`+questionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing question insert: %w", err)
	}
	defer stmt.Close()

	created := make([]model.Question, 0, len(inputs))
	for _, in := range inputs {
		in = in.WithDefaults()
		now := time.Now().UTC()
		q := model.Question{
			ID:         xid.New().String(),
			SessionID:  sessionID,
			UserID:     userID,
			Question:   in.Question,
			Answer:     in.Answer,
			Topic:      in.Topic,
			Difficulty: in.Difficulty,
			Type:       in.Type,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		_, err := stmt.ExecContext(ctx,
			q.ID,
			q.SessionID,
			q.UserID,
			q.Question,
			q.Answer,
			q.Topic,
			string(q.Difficulty),
			string(q.Type),
			q.Note,
			q.IsPinned,
			q.CreatedAt,
			q.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting question: %w", err)
		}
		created = append(created, q)
	}
	return created, nil
}

// requireRow turns a zero-row UPDATE into apperror.NotFound.
func requireRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

func (db *DB) queryQuestions(ctx context.Context, query string, args ...any) ([]model.Question, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	qs := []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning question row: %w", err)
		}
		qs = append(qs, *q)
	}
	return qs, rows.Err()
}

// scanQuestion reads questionColumns followed by any extra columns.
func scanQuestion(row scanner, extra ...any) (*model.Question, error) {
	var (
		q          model.Question
		difficulty string
		qType      string
	)
	dest := []any{
		&q.ID,
		&q.SessionID,
		&q.UserID,
		&q.Question,
		&q.Answer,
		&q.Topic,
		&difficulty,
		&qType,
		&q.Note,
		&q.IsPinned,
		&q.CreatedAt,
		&q.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	q.Difficulty = model.Difficulty(difficulty)
	q.Type = model.QuestionType(qType)
	return &q, nil
}
