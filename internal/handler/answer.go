package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/auth"
	"github.com/patinho/quack-board/internal/service"
)

// AnswerHandler exposes the answer lifecycle endpoints.
type AnswerHandler struct {
	answers *service.AnswerService
	logger  *slog.Logger
}

// NewAnswerHandler creates an AnswerHandler.
func NewAnswerHandler(answers *service.AnswerService, logger *slog.Logger) *AnswerHandler {
	return &AnswerHandler{
		answers: answers,
		logger:  logger,
	}
}

type createAnswerRequest struct {
	Content     string `json:"content"`
	CodeSnippet string `json:"code_snippet"`
}

type voteRequest struct {
	Direction string `json:"direction"`
}

// HandleCreate posts an answer to a question.
//
// HTTP: POST /api/questions/{id}/answers
// Auth: required
func (h *AnswerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	authorID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req createAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	questionID := chi.URLParam(r, "id")
	answer, err := h.answers.Create(r.Context(), questionID, authorID, req.Content, req.CodeSnippet)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, answer)
}

// HandleAccept marks an answer as its question's accepted solution, which
// demotes any previously accepted sibling.
//
// HTTP: PATCH /api/answers/{id}/accept
// Auth: required
func (h *AnswerHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.answers.Accept(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleVote applies an up or down vote and returns the updated answer.
// Voting needs no session; when one is present the voter is logged.
//
// A request without a body counts as an up-vote, the same as `{}` — an
// absent direction defaults to "up" either way.
//
// HTTP: PATCH /api/answers/{id}/vote
// Auth: optional
func (h *AnswerHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON request body"))
		return
	}

	id := chi.URLParam(r, "id")
	answer, err := h.answers.Vote(r.Context(), id, req.Direction)
	if err != nil {
		writeError(w, err)
		return
	}

	if voterID, ok := auth.UserIDFromContext(r.Context()); ok {
		h.logger.Info("vote recorded",
			slog.String("answer_id", id),
			slog.String("direction", req.Direction),
			slog.String("voter_id", voterID),
		)
	}

	writeJSON(w, http.StatusOK, answer)
}
