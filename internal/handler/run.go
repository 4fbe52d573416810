package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/executor"
	"github.com/patinho/quack-board/internal/repository"
)

// RunHandler executes a question's stored code snippet in the sandbox.
type RunHandler struct {
	questions repository.QuestionRepository
	runner    executor.Runner
	logger    *slog.Logger
}

// NewRunHandler creates a RunHandler. runner may be nil when Docker is
// unavailable; runs then answer 503.
func NewRunHandler(questions repository.QuestionRepository, runner executor.Runner, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		questions: questions,
		runner:    runner,
		logger:    logger,
	}
}

// HandleRun looks up the question's snippet and runs it in a sandboxed
// container of the question's language. Reading a snippet for execution
// does not count as a view.
//
// HTTP: POST /api/questions/{id}/run
func (h *RunHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "snippet execution is not available",
		})
		return
	}

	id := chi.URLParam(r, "id")
	question, err := h.questions.GetQuestionByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if question.CodeSnippet == "" {
		writeError(w, apperror.ValidationFailed("code_snippet", "question has no code snippet to run"))
		return
	}

	h.logger.Info("running question snippet",
		slog.String("questionID", question.ID),
		slog.String("language", question.Language),
	)

	result, err := h.runner.Run(r.Context(), executor.RunRequest{
		Code:     question.CodeSnippet,
		Language: question.Language,
	})
	if err != nil {
		h.logger.Error("snippet execution failed",
			slog.String("questionID", question.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
