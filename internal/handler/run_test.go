package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patinho/quack-board/internal/executor"
	"github.com/patinho/quack-board/internal/handler"
	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository/sqlite"
)

// mockRunner is a fast Runner for handler tests — no Docker involved.
type mockRunner struct {
	capturedReq executor.RunRequest
	returnRes   *executor.RunResult
	returnErr   error
}

func (m *mockRunner) Run(ctx context.Context, req executor.RunRequest) (*executor.RunResult, error) {
	m.capturedReq = req
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.returnRes, nil
}

func newRunTestRouter(t *testing.T, runner executor.Runner) (*chi.Mux, *sqlite.DB) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := handler.NewRunHandler(db, runner, logger)
	router := chi.NewRouter()
	router.Post("/api/questions/{id}/run", h.HandleRun)
	return router, db
}

func seedQuestion(t *testing.T, db *sqlite.DB, snippet string) *model.Question {
	t.Helper()
	ctx := context.Background()

	user := &model.User{Username: "asker", Email: "asker@example.com", PasswordHash: "$2a$04$hash"}
	require.NoError(t, db.CreateUser(ctx, user))

	q := &model.Question{
		Title:       "snippet question",
		Description: "desc",
		CodeSnippet: snippet,
		Language:    "javascript",
		AuthorID:    user.ID,
	}
	require.NoError(t, db.CreateQuestion(ctx, q))
	return q
}

func TestHandleRun_Success(t *testing.T) {
	runner := &mockRunner{
		returnRes: &executor.RunResult{
			Stdout:   "42\n",
			ExitCode: 0,
			Duration: 50 * time.Millisecond,
		},
	}
	router, db := newRunTestRouter(t, runner)
	q := seedQuestion(t, db, "console.log(42)")

	req := httptest.NewRequest(http.MethodPost, "/api/questions/"+q.ID+"/run", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res executor.RunResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "42\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)

	// The stored snippet and its language go to the sandbox verbatim.
	assert.Equal(t, "console.log(42)", runner.capturedReq.Code)
	assert.Equal(t, "javascript", runner.capturedReq.Language)
}

func TestHandleRun_QuestionNotFound(t *testing.T) {
	router, _ := newRunTestRouter(t, &mockRunner{})

	req := httptest.NewRequest(http.MethodPost, "/api/questions/missing/run", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleRun_NoSnippet(t *testing.T) {
	router, db := newRunTestRouter(t, &mockRunner{})
	q := seedQuestion(t, db, "")

	req := httptest.NewRequest(http.MethodPost, "/api/questions/"+q.ID+"/run", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleRun_SandboxUnavailable(t *testing.T) {
	router, db := newRunTestRouter(t, nil)
	q := seedQuestion(t, db, "console.log(42)")

	req := httptest.NewRequest(http.MethodPost, "/api/questions/"+q.ID+"/run", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
