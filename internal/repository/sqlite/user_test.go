package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

// newTestDB returns a fresh in-memory database with migrations applied.
// It is closed automatically when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user with a derived email; fails the test on error.
func createTestUser(t *testing.T, db *DB, name string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderpla",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// MIGRATION TESTS
// =========================================================================

func TestNew_AppliesMigrations(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := db.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
	if dirty {
		t.Error("schema should not be dirty after a clean migration")
	}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Name: "Asha", Email: "  Asha@Example.COM ", PasswordHash: "hash"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
	if user.Email != "asha@example.com" {
		t.Errorf("Email = %q, want lower-cased and trimmed", user.Email)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup")

	err := db.CreateUser(context.Background(), &model.User{
		Name:         "other",
		Email:        "DUP@example.com",
		PasswordHash: "hash",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "ravi")

	got, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Name != "ravi" || got.Email != "ravi@example.com" {
		t.Errorf("GetUserByID() = %+v", got)
	}
	if got.PasswordHash != created.PasswordHash {
		t.Error("GetUserByID() should load the password hash")
	}
}

func TestGetUserByID_ProfileImageURL(t *testing.T) {
	db := newTestDB(t)
	user := &model.User{
		Name:            "mei",
		Email:           "mei@example.com",
		ProfileImageURL: "http://localhost:8000/uploads/abc.png",
		PasswordHash:    "hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := db.GetUserByEmail(context.Background(), "mei@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ProfileImageURL != user.ProfileImageURL {
		t.Errorf("ProfileImageURL = %q, want %q", got.ProfileImageURL, user.ProfileImageURL)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "meera")

	for _, email := range []string{"meera@example.com", "MEERA@example.com", " meera@EXAMPLE.com "} {
		t.Run(fmt.Sprintf("lookup %q", email), func(t *testing.T) {
			got, err := db.GetUserByEmail(context.Background(), email)
			if err != nil {
				t.Fatalf("GetUserByEmail() error = %v", err)
			}
			if got.ID != created.ID {
				t.Errorf("ID = %q, want %q", got.ID, created.ID)
			}
		})
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
}
