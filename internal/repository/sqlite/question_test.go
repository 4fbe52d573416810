package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
)

func createTestQuestion(t *testing.T, db *DB, authorID, title string, opts ...func(*model.Question)) *model.Question {
	t.Helper()
	q := &model.Question{
		Title:       title,
		Description: "how do I do the thing",
		Language:    model.DefaultLanguage,
		Tags:        []string{},
		AuthorID:    authorID,
	}
	for _, opt := range opts {
		opt(q)
	}
	if err := db.CreateQuestion(context.Background(), q); err != nil {
		t.Fatalf("failed to create test question: %v", err)
	}
	return q
}

func TestCreateQuestion(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "asker", "asker@example.com")

	q := createTestQuestion(t, db, author.ID, "why does my closure capture the loop variable")

	if q.ID == "" {
		t.Error("CreateQuestion() did not set q.ID")
	}
	if q.CreatedAt.IsZero() {
		t.Error("CreateQuestion() did not set q.CreatedAt")
	}

	got, err := db.GetQuestionByID(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("GetQuestionByID() error = %v", err)
	}
	if got.Title != q.Title {
		t.Errorf("title = %q, want %q", got.Title, q.Title)
	}
	if got.Views != 0 {
		t.Errorf("fresh question views = %d, want 0", got.Views)
	}
	if got.Author == nil || got.Author.Username != "asker" {
		t.Errorf("reads should join the author, got %+v", got.Author)
	}
	if got.AnswerCount != 0 {
		t.Errorf("fresh question answer count = %d, want 0", got.AnswerCount)
	}
}

func TestGetQuestionByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetQuestionByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetQuestionByID(missing) = %v, want ErrNotFound", err)
	}
}

func TestIncrementViews(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "asker", "asker@example.com")
	q := createTestQuestion(t, db, author.ID, "views")

	for i := 0; i < 3; i++ {
		if err := db.IncrementViews(context.Background(), q.ID); err != nil {
			t.Fatalf("IncrementViews() error = %v", err)
		}
	}

	got, err := db.GetQuestionByID(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("GetQuestionByID() error = %v", err)
	}
	if got.Views != 3 {
		t.Errorf("views = %d, want 3", got.Views)
	}
}

func TestIncrementViews_NotFound(t *testing.T) {
	db := newTestDB(t)

	if err := db.IncrementViews(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("IncrementViews(missing) = %v, want ErrNotFound", err)
	}
}

// Concurrent detail reads must each land their increment: the counter is
// bumped relative to the stored value, never written back from a read.
func TestIncrementViews_ConcurrentNoLostUpdates(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "asker", "asker@example.com")
	q := createTestQuestion(t, db, author.ID, "hot question")

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := db.IncrementViews(context.Background(), q.ID); err != nil {
				t.Errorf("IncrementViews() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := db.GetQuestionByID(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("GetQuestionByID() error = %v", err)
	}
	if got.Views != n {
		t.Errorf("views = %d, want exactly %d", got.Views, n)
	}
}

func TestListQuestions_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "asker", "asker@example.com")

	first := createTestQuestion(t, db, author.ID, "first")
	second := createTestQuestion(t, db, author.ID, "second")
	third := createTestQuestion(t, db, author.ID, "third")

	got, err := db.ListQuestions(context.Background(), repository.QuestionFilter{})
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListQuestions() returned %d questions, want 3", len(got))
	}
	for i, want := range []string{third.ID, second.ID, first.ID} {
		if got[i].ID != want {
			t.Errorf("position %d = %q, want %q (newest first)", i, got[i].ID, want)
		}
	}
}

func TestListQuestions_Filters(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "asker", "asker@example.com")

	createTestQuestion(t, db, author.ID, "goroutine leak in worker pool", func(q *model.Question) {
		q.Language = "go"
		q.Tags = []string{"concurrency", "channels"}
	})
	createTestQuestion(t, db, author.ID, "async await confusion", func(q *model.Question) {
		q.Language = "javascript"
		q.Tags = []string{"async"}
	})
	createTestQuestion(t, db, author.ID, "channel deadlock", func(q *model.Question) {
		q.Language = "go"
		q.Tags = []string{"channels"}
	})

	tests := []struct {
		name   string
		filter repository.QuestionFilter
		want   int
	}{
		{"no filter", repository.QuestionFilter{}, 3},
		{"by language", repository.QuestionFilter{Language: "go"}, 2},
		{"by tag", repository.QuestionFilter{Tag: "channels"}, 2},
		{"tag is exact membership not substring", repository.QuestionFilter{Tag: "channel"}, 0},
		{"text search, case-insensitive", repository.QuestionFilter{Query: "DEADLOCK"}, 1},
		{"text search matches description", repository.QuestionFilter{Query: "the thing"}, 3},
		{"combined", repository.QuestionFilter{Language: "go", Tag: "concurrency"}, 1},
		{"no match", repository.QuestionFilter{Language: "rust"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListQuestions(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListQuestions() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("ListQuestions(%+v) returned %d, want %d", tt.filter, len(got), tt.want)
			}
		})
	}
}

func TestListQuestions_EmptyBoard(t *testing.T) {
	db := newTestDB(t)

	got, err := db.ListQuestions(context.Background(), repository.QuestionFilter{})
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}
	if got == nil {
		t.Error("ListQuestions() on empty board should return an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("ListQuestions() returned %d questions, want 0", len(got))
	}
}

func TestListQuestionsByAuthor(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	createTestQuestion(t, db, alice.ID, "alice one")
	createTestQuestion(t, db, bob.ID, "bob one")
	createTestQuestion(t, db, alice.ID, "alice two")

	got, err := db.ListQuestionsByAuthor(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListQuestionsByAuthor() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListQuestionsByAuthor() returned %d, want 2", len(got))
	}
	for _, q := range got {
		if q.AuthorID != alice.ID {
			t.Errorf("question %q has author %q, want %q", q.ID, q.AuthorID, alice.ID)
		}
	}
}

func TestDeleteQuestion(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "asker", "asker@example.com")
	q := createTestQuestion(t, db, author.ID, "to delete")

	if err := db.DeleteQuestion(context.Background(), q.ID); err != nil {
		t.Fatalf("DeleteQuestion() error = %v", err)
	}

	if _, err := db.GetQuestionByID(context.Background(), q.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetQuestionByID() after delete = %v, want ErrNotFound", err)
	}

	if err := db.DeleteQuestion(context.Background(), q.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteQuestion() twice = %v, want ErrNotFound", err)
	}
}

func TestTagsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "asker", "asker@example.com")

	q := createTestQuestion(t, db, author.ID, "tagged", func(q *model.Question) {
		q.Tags = []string{"go", "web", "sqlite"}
	})

	got, err := db.GetQuestionByID(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("GetQuestionByID() error = %v", err)
	}
	if len(got.Tags) != 3 || got.Tags[0] != "go" || got.Tags[2] != "sqlite" {
		t.Errorf("tags = %v, want [go web sqlite]", got.Tags)
	}

	// No tags must come back as an empty list, not [""].
	bare := createTestQuestion(t, db, author.ID, "untagged")
	got, err = db.GetQuestionByID(context.Background(), bare.ID)
	if err != nil {
		t.Fatalf("GetQuestionByID() error = %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("untagged question tags = %v, want empty", got.Tags)
	}
}
