package sqlite

import (
	"context"
	"testing"

	"github.com/patinho/quack-board/internal/model"
)

func TestStats_EmptyBoard(t *testing.T) {
	db := newTestDB(t)

	got, err := db.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if got.TotalQuestions != 0 || got.TotalAnswers != 0 || got.AcceptedCount != 0 {
		t.Errorf("empty board stats = %+v, want all zeros", got)
	}
	if got.Languages == nil {
		t.Error("Languages should be an empty slice, not nil (marshals to [], not null)")
	}
	if len(got.Languages) != 0 {
		t.Errorf("Languages = %v, want empty", got.Languages)
	}
}

func TestStats_CountsAndLanguageBreakdown(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	asker := createTestUser(t, db, "asker", "asker@example.com")
	answerer := createTestUser(t, db, "answerer", "answerer@example.com")

	lang := func(l string) func(*model.Question) {
		return func(q *model.Question) { q.Language = l }
	}
	createTestQuestion(t, db, asker.ID, "go one", lang("go"))
	createTestQuestion(t, db, asker.ID, "go two", lang("go"))
	q3 := createTestQuestion(t, db, asker.ID, "js one", lang("javascript"))

	a1 := createTestAnswer(t, db, q3.ID, answerer.ID, "first")
	createTestAnswer(t, db, q3.ID, answerer.ID, "second")
	if err := db.AcceptAnswer(ctx, a1.ID); err != nil {
		t.Fatalf("AcceptAnswer() error = %v", err)
	}

	got, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if got.TotalQuestions != 3 {
		t.Errorf("TotalQuestions = %d, want 3", got.TotalQuestions)
	}
	if got.TotalAnswers != 2 {
		t.Errorf("TotalAnswers = %d, want 2", got.TotalAnswers)
	}
	if got.AcceptedCount != 1 {
		t.Errorf("AcceptedCount = %d, want 1", got.AcceptedCount)
	}

	if len(got.Languages) != 2 {
		t.Fatalf("Languages = %v, want two entries", got.Languages)
	}
	// Ordered by count descending, ties alphabetical.
	if got.Languages[0].Language != "go" || got.Languages[0].Count != 2 {
		t.Errorf("Languages[0] = %+v, want go/2", got.Languages[0])
	}
	if got.Languages[1].Language != "javascript" || got.Languages[1].Count != 1 {
		t.Errorf("Languages[1] = %+v, want javascript/1", got.Languages[1])
	}
}

func TestStats_AcceptedCountFollowsReaccept(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	asker := createTestUser(t, db, "asker", "asker@example.com")
	answerer := createTestUser(t, db, "answerer", "answerer@example.com")
	q := createTestQuestion(t, db, asker.ID, "question")

	x := createTestAnswer(t, db, q.ID, answerer.ID, "X")
	y := createTestAnswer(t, db, q.ID, answerer.ID, "Y")

	// Accepting Y then X must still count one accepted answer total.
	if err := db.AcceptAnswer(ctx, y.ID); err != nil {
		t.Fatalf("AcceptAnswer(Y) error = %v", err)
	}
	if err := db.AcceptAnswer(ctx, x.ID); err != nil {
		t.Fatalf("AcceptAnswer(X) error = %v", err)
	}

	got, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if got.AcceptedCount != 1 {
		t.Errorf("AcceptedCount = %d, want 1 after re-accept", got.AcceptedCount)
	}
}
