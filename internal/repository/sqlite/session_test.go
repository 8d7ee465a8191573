package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

func sampleInputs(n int) []model.QuestionInput {
	base := []model.QuestionInput{
		{Question: "What is a closure?", Answer: "A function bundled with its lexical scope.", Topic: "JavaScript", Difficulty: model.DifficultyMedium},
		{Question: "Explain the virtual DOM.", Answer: "An in-memory tree diffed against the real DOM.", Topic: "React", Difficulty: model.DifficultyEasy},
		{Question: "What is a decorator?", Answer: "A callable that wraps another callable.", Topic: "Python", Difficulty: model.DifficultyHard},
	}
	out := make([]model.QuestionInput, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, base[i%len(base)])
	}
	return out
}

// createTestSession stores a session with n questions for user.
func createTestSession(t *testing.T, db *DB, user *model.User, n int) *model.Session {
	t.Helper()
	s := &model.Session{
		UserID:        user.ID,
		Role:          "Frontend Developer",
		Experience:    "2",
		TopicsToFocus: "React, JavaScript",
		Description:   "practice round",
	}
	if err := db.CreateSession(context.Background(), s, sampleInputs(n)); err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}
	return s
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateSession(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "asha")

	s := createTestSession(t, db, user, 3)

	if s.ID == "" {
		t.Fatal("CreateSession() did not set session.ID")
	}
	if len(s.Questions) != 3 {
		t.Fatalf("len(Questions) = %d, want 3", len(s.Questions))
	}
	for _, q := range s.Questions {
		if q.SessionID != s.ID {
			t.Errorf("question %s SessionID = %q, want %q", q.ID, q.SessionID, s.ID)
		}
		if q.UserID != user.ID {
			t.Errorf("question %s UserID = %q, want %q", q.ID, q.UserID, user.ID)
		}
		if q.IsPinned {
			t.Errorf("question %s should start unpinned", q.ID)
		}
		if q.Type != model.TypeTechnical {
			t.Errorf("question %s Type = %q, want default technical", q.ID, q.Type)
		}
	}
}

func TestCreateSession_NoQuestions(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "asha")

	s := createTestSession(t, db, user, 0)

	got, err := db.GetSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Questions == nil || len(got.Questions) != 0 {
		t.Errorf("Questions = %v, want empty non-nil slice", got.Questions)
	}
}

func TestCreateSession_UnknownUserRollsBack(t *testing.T) {
	db := newTestDB(t)

	s := &model.Session{UserID: "no-such-user", Role: "Backend", Experience: "5", TopicsToFocus: "Go"}
	if err := db.CreateSession(context.Background(), s, sampleInputs(2)); err == nil {
		t.Fatal("CreateSession() with unknown user should fail the foreign key check")
	}

	var sessions, questions int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
		t.Fatalf("counting sessions: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&questions); err != nil {
		t.Fatalf("counting questions: %v", err)
	}
	if sessions != 0 || questions != 0 {
		t.Errorf("rows left after failed create: sessions=%d questions=%d", sessions, questions)
	}
}

// =========================================================================
// GET / LIST TESTS
// =========================================================================

func TestGetSession(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "asha")
	created := createTestSession(t, db, user, 2)

	got, err := db.GetSession(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Role != "Frontend Developer" || got.TopicsToFocus != "React, JavaScript" {
		t.Errorf("GetSession() = %+v", got)
	}
	if got.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", got.UserID, user.ID)
	}
	if len(got.Questions) != 2 {
		t.Errorf("len(Questions) = %d, want 2", len(got.Questions))
	}
}

func TestGetSession_PinnedFirst(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "asha")
	s := createTestSession(t, db, user, 3)

	// Questions come back newest first, so the oldest is last.
	oldest := s.Questions[len(s.Questions)-1]
	if _, err := db.TogglePin(context.Background(), oldest.ID); err != nil {
		t.Fatalf("TogglePin() error = %v", err)
	}

	got, err := db.GetSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Questions[0].ID != oldest.ID {
		t.Errorf("first question = %s, want pinned %s", got.Questions[0].ID, oldest.ID)
	}
	if !got.Questions[0].IsPinned {
		t.Error("first question should be pinned")
	}
	for _, q := range got.Questions[1:] {
		if q.IsPinned {
			t.Errorf("question %s should not be pinned", q.ID)
		}
	}
}

func TestGetSession_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetSession(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetSession() error = %v, want ErrNotFound", err)
	}
}

func TestListSessionsByUser(t *testing.T) {
	db := newTestDB(t)
	asha := createTestUser(t, db, "asha")
	ravi := createTestUser(t, db, "ravi")

	first := createTestSession(t, db, asha, 1)
	second := createTestSession(t, db, asha, 2)
	createTestSession(t, db, ravi, 3)

	got, err := db.ListSessionsByUser(context.Background(), asha.ID)
	if err != nil {
		t.Fatalf("ListSessionsByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first [%s %s]", got[0].ID, got[1].ID, second.ID, first.ID)
	}
	if len(got[0].Questions) != 2 || len(got[1].Questions) != 1 {
		t.Errorf("question counts = %d, %d; want 2, 1", len(got[0].Questions), len(got[1].Questions))
	}
	for _, s := range got {
		for _, q := range s.Questions {
			if q.SessionID != s.ID {
				t.Errorf("question %s grouped under %s, belongs to %s", q.ID, s.ID, q.SessionID)
			}
		}
	}
}

func TestListSessionsByUser_Empty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "asha")

	got, err := db.ListSessionsByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListSessionsByUser() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteSession(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "asha")
	s := createTestSession(t, db, user, 3)
	keep := createTestSession(t, db, user, 1)

	deleted, err := db.DeleteSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	if _, err := db.GetSession(context.Background(), s.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSession() after delete error = %v, want ErrNotFound", err)
	}
	for _, q := range s.Questions {
		if _, err := db.GetQuestion(context.Background(), q.ID); !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("question %s survived session delete", q.ID)
		}
	}

	other, err := db.GetSession(context.Background(), keep.ID)
	if err != nil {
		t.Fatalf("GetSession(keep) error = %v", err)
	}
	if len(other.Questions) != 1 {
		t.Errorf("unrelated session lost questions: %d", len(other.Questions))
	}
}

func TestDeleteSession_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.DeleteSession(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("DeleteSession() error = %v, want ErrNotFound", err)
	}
}
