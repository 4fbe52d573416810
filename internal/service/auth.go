// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate and enforce
// the board's rules; repositories read and write the database. Services
// depend on the repository INTERFACES, never on the sqlite package, so
// tests swap in hand-written fakes and the storage backend can change
// without touching business rules.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/xid"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/auth"
	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
)

// Registration constraints, matching the original board's schema rules.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinSecretLength   = 6
	MaxBioLength      = 300
)

// emailShape is the minimal text@text.text check the original schema uses.
// Deliberately loose — real validation of an address is delivery, not regex.
var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// AuthService is the credential verifier: registration, login, token
// validation, and the GitHub social-login path.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued session token so the
// handler can respond in one step.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates a new account and logs it in.
//
// All field violations are collected and reported together (aggregated
// ValidationError), then uniqueness is checked — email case-insensitively,
// via the lowercased stored form. Hashing the secret is an explicit step
// here, not a persistence hook: the cost parameter and the algorithm are
// visible and testable.
func (s *AuthService) Register(ctx context.Context, username, email, secret string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var v apperror.ValidationErrors
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		v.Add("username", fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if !emailShape.MatchString(email) {
		v.Add("email", "invalid e-mail format")
	}
	if len(secret) < MinSecretLength {
		v.Add("password", fmt.Sprintf("password must be at least %d characters", MinSecretLength))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	// Friendly duplicate check before insert; the UNIQUE constraints remain
	// the backstop for registrations racing each other.
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email", "this e-mail is already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email %s: %w", email, err)
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("username", "this username is already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking username %s: %w", username, err)
	}

	hash, err := s.passwords.Hash(secret)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %s: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueToken(user)
}

// Authenticate verifies email + secret and issues a session token.
//
// Both failure modes — unknown email and wrong secret — return the SAME
// error, so a caller can never probe whether an address is registered.
// This is the one read path allowed to load the stored hash.
func (s *AuthService) Authenticate(ctx context.Context, email, secret string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmailWithHash(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("service/auth: fetching credentials: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, secret); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	// The hash has done its job; drop it before the record travels further.
	user.PasswordHash = ""

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return s.issueToken(user)
}

// LoginOrRegisterGitHub maps a GitHub profile to a local account: first
// login creates one, later logins reuse it.
//
// The created account gets a bcrypt hash of 32 random bytes as its secret —
// unusable for password login, but it keeps the "hash present and non-empty"
// invariant intact for every user row.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	username, err := s.availableUsername(ctx, ghUser.Login)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(ghUser.Email)
	if email == "" {
		// GitHub hides the address when the user opted out; fall back to the
		// noreply convention so the unique email column stays satisfied.
		email = strings.ToLower(ghUser.Login) + "@users.noreply.github.com"
	}

	hash, err := s.passwords.Hash(randomSecret())
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing placeholder secret: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.UpsertGitHubUser(ctx, user, ghUser.ID); err != nil {
		return nil, fmt.Errorf("service/auth: upserting github user %d: %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueToken(user)
}

// GetUserByID resolves a user id to the full record (hash excluded).
// Used by the /api/auth/me handler after the middleware validated the token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.RefreshAvatarURL()

	return user, nil
}

// ValidateToken validates a session token and returns the userID it
// encodes. Thin delegation so callers only import the service package.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", apperror.Unauthorized("invalid or expired token")
	}
	return userID, nil
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	user.RefreshAvatarURL()

	return &AuthResult{User: user, Token: token}, nil
}

// availableUsername returns login if free, otherwise login plus a short
// random suffix — a GitHub login may already be taken by a board account.
func (s *AuthService) availableUsername(ctx context.Context, login string) (string, error) {
	_, err := s.users.GetUserByUsername(ctx, login)
	if errors.Is(err, apperror.ErrNotFound) {
		return login, nil
	}
	if err != nil {
		return "", fmt.Errorf("service/auth: checking username %s: %w", login, err)
	}
	return login + "-" + xid.New().String()[:5], nil
}

// randomSecret produces an unguessable placeholder secret for social-login
// accounts. 32 random bytes hex-encoded stays under bcrypt's 72-byte cap.
func randomSecret() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
