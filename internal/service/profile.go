package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"unicode/utf8"

	// Image decoders register themselves at init time, the same way SQL
	// drivers do. These four are the formats the board accepts as avatars;
	// webp comes from golang.org/x/image since the stdlib has no decoder.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/rs/xid"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
	"github.com/patinho/quack-board/internal/storage"
)

// MaxAvatarBytes caps avatar uploads at 5 MB, like the original board.
const MaxAvatarBytes = 5 << 20

// ProfileService handles profile edits and avatar uploads for the
// authenticated user, plus public profile lookups.
type ProfileService struct {
	users   repository.UserRepository
	avatars *storage.AvatarStore
	logger  *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(users repository.UserRepository, avatars *storage.AvatarStore, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		users:   users,
		avatars: avatars,
		logger:  logger,
	}
}

// ProfileUpdate carries the optional fields of a profile edit. Nil means
// "leave unchanged" — an explicit empty string still updates (clearing the
// bio is a legitimate edit).
type ProfileUpdate struct {
	Username *string
	Bio      *string
}

// Update applies a partial profile edit. Username changes revalidate
// against the registration rules and collide with Conflict like
// registration does.
func (s *ProfileService) Update(ctx context.Context, userID string, update ProfileUpdate) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var v apperror.ValidationErrors

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
			v.Add("username", fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
		} else if username != user.Username {
			if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
				return nil, apperror.Conflict("username", "this username is already registered")
			} else if !errors.Is(err, apperror.ErrNotFound) {
				return nil, fmt.Errorf("service/profile: checking username %s: %w", username, err)
			}
			user.Username = username
		}
	}
	if update.Bio != nil {
		bio := strings.TrimSpace(*update.Bio)
		if utf8.RuneCountInString(bio) > MaxBioLength {
			v.Add("bio", fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
		} else {
			user.Bio = bio
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", userID))

	user.RefreshAvatarURL()
	return user, nil
}

// UploadAvatar validates and stores a new avatar, replacing (and deleting)
// the previous one. The data must decode as jpeg, png, gif or webp and stay
// under MaxAvatarBytes; anything else is a ValidationError, not an internal
// failure.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, data []byte) (*model.User, error) {
	if len(data) == 0 {
		return nil, apperror.ValidationFailed("avatar", "no file uploaded")
	}
	if len(data) > MaxAvatarBytes {
		return nil, apperror.ValidationFailed("avatar", "avatar must be 5MB or smaller")
	}

	// DecodeConfig reads only the header — cheap, and it rejects anything
	// that merely claims an image content type.
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.ValidationFailed("avatar", "only jpeg, png, gif and webp images are allowed")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("avatar-%s-%s.%s", userID, xid.New().String(), extensionFor(format))
	if err := s.avatars.Save(name, data); err != nil {
		return nil, fmt.Errorf("service/profile: storing avatar: %w", err)
	}

	previous := user.Avatar
	user.Avatar = name
	if err := s.users.UpdateUser(ctx, user); err != nil {
		// Roll the file back so a failed update doesn't leak orphans.
		if rmErr := s.avatars.Remove(name); rmErr != nil {
			s.logger.Warn("failed to clean up orphaned avatar", slog.String("file", name))
		}
		return nil, err
	}

	if previous != "" {
		if err := s.avatars.Remove(previous); err != nil {
			s.logger.Warn("failed to remove previous avatar",
				slog.String("file", previous),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("avatar uploaded",
		slog.String("userID", userID),
		slog.String("file", name),
	)

	user.RefreshAvatarURL()
	return user, nil
}

// GetPublic returns another user's profile (hash never loaded).
func (s *ProfileService) GetPublic(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.RefreshAvatarURL()
	return user, nil
}

// extensionFor maps an image.DecodeConfig format name to a file extension.
func extensionFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
