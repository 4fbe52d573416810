package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/auth"
	"github.com/patinho/quack-board/internal/service"
)

// UserHandler exposes public profiles and the authenticated user's
// profile-editing endpoints.
type UserHandler struct {
	profiles  *service.ProfileService
	questions *service.QuestionService
	logger    *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(profiles *service.ProfileService, questions *service.QuestionService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		profiles:  profiles,
		questions: questions,
		logger:    logger,
	}
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

// HandleGet returns a user's public profile. The credential hash is never
// part of this payload.
//
// HTTP: GET /api/users/{id}
// Auth: required
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.profiles.GetPublic(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleListQuestions returns the questions a user has posted, newest
// first.
//
// HTTP: GET /api/users/{id}/questions
// Auth: required
func (h *UserHandler) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	questions, err := h.questions.ListByAuthor(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

// HandleUpdateProfile applies a partial edit to the authenticated user's
// profile. Absent fields stay unchanged.
//
// HTTP: PUT /api/users/me
// Auth: required
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.profiles.Update(r.Context(), userID, service.ProfileUpdate{
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleUploadAvatar stores a new avatar for the authenticated user. The
// file arrives as multipart form field "avatar" and is capped at 5 MB
// before any decoding happens.
//
// HTTP: POST /api/users/me/avatar
// Auth: required
func (h *UserHandler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	// MaxBytesReader closes the connection once the limit is crossed, so
	// an oversized upload never buffers fully in memory. A little slack
	// over the avatar cap leaves room for the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxAvatarBytes+1024)

	if err := r.ParseMultipartForm(service.MaxAvatarBytes); err != nil {
		writeError(w, apperror.ValidationFailed("avatar", "avatar must be 5MB or smaller"))
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, apperror.ValidationFailed("avatar", "no file uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read avatar upload", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	user, err := h.profiles.UploadAvatar(r.Context(), userID, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
