package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/model"
)

// newTestDB opens a fresh in-memory database per test. Fast, isolated,
// destroyed with the connection.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username, email string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$fakefakefakefakefakefake",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "patinho",
		Email:        "duck@example.com",
		PasswordHash: "$2a$04$hash",
	}

	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("CreateUser() did not set timestamps")
	}
	if user.Role != model.RoleUser {
		t.Errorf("CreateUser() role = %q, want %q", user.Role, model.RoleUser)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "first", "same@example.com")

	err := db.CreateUser(context.Background(), &model.User{
		Username:     "second",
		Email:        "same@example.com",
		PasswordHash: "$2a$04$hash",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() with duplicate email = %v, want ErrConflict", err)
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "email" {
		t.Errorf("conflict field = %q, want %q", appErr.Field, "email")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "taken", "one@example.com")

	err := db.CreateUser(context.Background(), &model.User{
		Username:     "taken",
		Email:        "two@example.com",
		PasswordHash: "$2a$04$hash",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() with duplicate username = %v, want ErrConflict", err)
	}
}

func TestGetUserByID_ExcludesHash(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "patinho", "duck@example.com")

	got, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}

	if got.Username != "patinho" || got.Email != "duck@example.com" {
		t.Errorf("GetUserByID() = %v/%v, want patinho/duck@example.com", got.Username, got.Email)
	}
	// Normal reads never select password_hash.
	if got.PasswordHash != "" {
		t.Error("GetUserByID() loaded the password hash")
	}
}

func TestGetUserByEmailWithHash(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "patinho", "duck@example.com")

	got, err := db.GetUserByEmailWithHash(context.Background(), "duck@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmailWithHash() error = %v", err)
	}
	if got.PasswordHash == "" {
		t.Error("GetUserByEmailWithHash() should load the hash")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetUserByID(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(missing) = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByEmail(context.Background(), "no@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail(missing) = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByUsername(context.Background(), "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByUsername(missing) = %v, want ErrNotFound", err)
	}
}

func TestUpdateUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "before", "duck@example.com")

	user.Username = "after"
	user.Bio = "quacks in Go"
	if err := db.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	got, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Username != "after" || got.Bio != "quacks in Go" {
		t.Errorf("UpdateUser() persisted %v/%v, want after/quacks in Go", got.Username, got.Bio)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateUser(context.Background(), &model.User{ID: "missing", Username: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUser(missing) = %v, want ErrNotFound", err)
	}
}

func TestUpsertGitHubUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{
		Username:     "octoduck",
		Email:        "octo@example.com",
		PasswordHash: "$2a$04$placeholder",
	}
	if err := db.UpsertGitHubUser(ctx, first, 424242); err != nil {
		t.Fatalf("UpsertGitHubUser() first login error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("UpsertGitHubUser() did not set an ID on insert")
	}

	// Same GitHub identity logs in again: must resolve to the same account,
	// even if the caller proposes different profile fields.
	second := &model.User{
		Username:     "renamed",
		Email:        "other@example.com",
		PasswordHash: "$2a$04$placeholder",
	}
	if err := db.UpsertGitHubUser(ctx, second, 424242); err != nil {
		t.Fatalf("UpsertGitHubUser() second login error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second login got ID %q, want existing %q", second.ID, first.ID)
	}
	if second.Username != "octoduck" {
		t.Errorf("second login username = %q, want stored %q", second.Username, "octoduck")
	}
}

func TestCreateUser_ManyUsersUniqueIDs(t *testing.T) {
	db := newTestDB(t)
	seen := map[string]bool{}

	for i := 0; i < 20; i++ {
		u := createTestUser(t, db, fmt.Sprintf("user%d", i), fmt.Sprintf("u%d@example.com", i))
		if seen[u.ID] {
			t.Fatalf("duplicate generated ID %q", u.ID)
		}
		seen[u.ID] = true
	}
}
