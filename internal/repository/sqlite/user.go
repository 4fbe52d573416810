package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// userColumns is every column a normal read returns. password_hash is
// deliberately absent — only GetByEmailWithHash selects it.
const userColumns = `id, username, email, role, avatar, bio, created_at, updated_at`

// Create inserts a new user. The caller provides Username, Email (already
// lowercased), PasswordHash, Role and Bio; ID and timestamps are filled in
// here.
//
// A UNIQUE violation on username or email maps to apperror.Conflict. The
// service checks for duplicates up front for a friendlier message, but the
// constraint is the backstop against races between two registrations.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, avatar, bio, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Avatar,
		user.Bio,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// GetUserByID retrieves a user by internal id. The hash is not loaded.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by (lowercased) email. The hash is not loaded.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

// GetUserByUsername retrieves a user by exact username. The hash is not loaded.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `WHERE username = ?`, username)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users `+where, arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Role,
		&u.Avatar,
		&u.Bio,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}

// GetUserByEmailWithHash is the one read path that loads password_hash — used
// only by login, which needs the hash to compare credentials.
func (db *DB) GetUserByEmailWithHash(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE email = ?`, email,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Role,
		&u.Avatar,
		&u.Bio,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.PasswordHash,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}

	return &u, nil
}

// UpsertGitHubUser creates or refreshes the local account bound to a GitHub
// identity. First login inserts; later logins keep the existing internal id
// and refresh the avatar. Username and email are only set on insert — a
// board user may have edited them since.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User, githubID int64) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, githubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", githubID, err)
	}

	if existingID != "" {
		loaded, err := db.GetUserByID(ctx, existingID)
		if err != nil {
			return err
		}
		loaded.PasswordHash = "" // never carried outward
		*user = *loaded
		return nil
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, avatar, bio, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Avatar,
		user.Bio,
		githubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlite: inserting github user %d: %w", githubID, err)
	}

	return nil
}

// UpdateUser persists profile fields (username, bio, avatar). The hash, email
// and role are not touched here.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, bio = ?, avatar = ?, updated_at = ? WHERE id = ?`,
		user.Username,
		user.Bio,
		user.Avatar,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// uniqueConflict translates a SQLite UNIQUE violation into the matching
// apperror.Conflict, or returns nil if err is something else.
func uniqueConflict(err error) *apperror.AppError {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.email"):
		return apperror.Conflict("email", "this e-mail is already registered")
	case strings.Contains(msg, "users.username"):
		return apperror.Conflict("username", "this username is already registered")
	}
	return apperror.Conflict("user", "duplicate unique field")
}
