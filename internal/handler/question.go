package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/auth"
	"github.com/patinho/quack-board/internal/repository"
	"github.com/patinho/quack-board/internal/service"
)

// QuestionHandler exposes the question endpoints.
type QuestionHandler struct {
	questions *service.QuestionService
	logger    *slog.Logger
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(questions *service.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		logger:    logger,
	}
}

// tagList accepts tags either as a JSON array or as a single
// comma-separated string, because board clients have always sent both.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*t = strings.Split(joined, ",")
	return nil
}

type createQuestionRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CodeSnippet string  `json:"code_snippet"`
	Language    string  `json:"language"`
	Tags        tagList `json:"tags"`
}

// HandleList returns questions newest first, optionally filtered by
// ?lang=, ?tag= and ?q= (title/description substring).
//
// HTTP: GET /api/questions
func (h *QuestionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := repository.QuestionFilter{
		Language: r.URL.Query().Get("lang"),
		Tag:      r.URL.Query().Get("tag"),
		Query:    r.URL.Query().Get("q"),
	}

	questions, err := h.questions.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

// HandleGet returns one question with its answers. Every successful read
// counts a view; the increment is persisted before the response goes out.
//
// HTTP: GET /api/questions/{id}
func (h *QuestionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.questions.GetDetail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// HandleCreate posts a new question.
//
// HTTP: POST /api/questions
// Auth: required
func (h *QuestionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	authorID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req createQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	question, err := h.questions.Create(r.Context(), authorID, req.Title, req.Description, req.CodeSnippet, req.Language, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, question)
}
