package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
)

// compile-time check that *DB implements repository.AnswerRepository
var _ repository.AnswerRepository = (*DB)(nil)

const answerSelect = `
	SELECT a.id, a.question_id, a.content, a.code_snippet, a.author_id,
	       a.is_accepted, a.votes, a.created_at, a.updated_at,
	       u.username, u.avatar
	FROM answers a
	JOIN users u ON u.id = a.author_id`

// CreateAnswer inserts a new answer. The question must exist — the caller checks
// first for a proper 404, and the foreign key is the backstop.
func (db *DB) CreateAnswer(ctx context.Context, answer *model.Answer) error {
	now := time.Now()
	answer.ID = xid.New().String()
	answer.CreatedAt = now
	answer.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO answers (id, question_id, content, code_snippet, author_id, is_accepted, votes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		answer.ID,
		answer.QuestionID,
		answer.Content,
		answer.CodeSnippet,
		answer.AuthorID,
		answer.CreatedAt,
		answer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating answer: %w", err)
	}

	return nil
}

// GetAnswerByID retrieves a single answer with its author byline.
func (db *DB) GetAnswerByID(ctx context.Context, id string) (*model.Answer, error) {
	row := db.conn.QueryRowContext(ctx, answerSelect+` WHERE a.id = ?`, id)

	a, err := scanAnswer(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("answer", id)
		}
		return nil, fmt.Errorf("sqlite: getting answer %s: %w", id, err)
	}

	return a, nil
}

// ListAnswersByQuestion returns a question's answers ordered accepted-first, then
// votes descending, then arrival order (xid ids sort by creation time, so
// ascending id IS insertion order).
func (db *DB) ListAnswersByQuestion(ctx context.Context, questionID string) ([]model.Answer, error) {
	rows, err := db.conn.QueryContext(ctx,
		answerSelect+` WHERE a.question_id = ?
		 ORDER BY a.is_accepted DESC, a.votes DESC, a.id ASC`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing answers for question %s: %w", questionID, err)
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		a, err := scanAnswer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning answer row: %w", err)
		}
		answers = append(answers, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating answers: %w", err)
	}

	return answers, nil
}

// AcceptAnswer marks one answer accepted and clears the flag on every sibling of
// the same question — as ONE transaction.
//
// The clear-all + set-one pair must be applied as a unit: two concurrent
// accepts on the same question must never commit interleaved, or the board
// could end up with two accepted answers (or zero). The DSN sets
// _txlock=immediate, so BEGIN takes the write lock up front: whichever
// transaction starts first commits its full clear+set before the other
// begins, and the loser waits on busy_timeout instead of aborting with a
// snapshot conflict mid-upgrade. Accepts on DIFFERENT questions touch
// disjoint rows and carry no ordering constraint.
func (db *DB) AcceptAnswer(ctx context.Context, answerID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning accept transaction: %w", err)
	}
	defer tx.Rollback()

	var questionID string
	err = tx.QueryRowContext(ctx,
		`SELECT question_id FROM answers WHERE id = ?`, answerID,
	).Scan(&questionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("answer", answerID)
		}
		return fmt.Errorf("sqlite: looking up answer %s: %w", answerID, err)
	}

	now := time.Now()

	if _, err := tx.ExecContext(ctx,
		`UPDATE answers SET is_accepted = 0, updated_at = ?
		 WHERE question_id = ? AND is_accepted = 1`,
		now, questionID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing accepted answers for question %s: %w", questionID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE answers SET is_accepted = 1, updated_at = ? WHERE id = ?`,
		now, answerID,
	); err != nil {
		return fmt.Errorf("sqlite: accepting answer %s: %w", answerID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing accept for answer %s: %w", answerID, err)
	}

	return nil
}

// VoteAnswer applies delta to the vote counter and returns the updated answer.
//
// The increment is relative to the STORED value (votes = votes + ?), never a
// write-back of a count read earlier — concurrent votes all land, no lost
// updates. Votes commute, so no ordering beyond atomicity is needed.
func (db *DB) VoteAnswer(ctx context.Context, answerID string, delta int64) (*model.Answer, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE answers SET votes = votes + ?, updated_at = ? WHERE id = ?`,
		delta, time.Now(), answerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: voting on answer %s: %w", answerID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("answer", answerID)
	}

	return db.GetAnswerByID(ctx, answerID)
}

func scanAnswer(scan func(...any) error) (*model.Answer, error) {
	var (
		a              model.Answer
		authorUsername string
		authorAvatar   string
	)

	err := scan(
		&a.ID,
		&a.QuestionID,
		&a.Content,
		&a.CodeSnippet,
		&a.AuthorID,
		&a.IsAccepted,
		&a.Votes,
		&a.CreatedAt,
		&a.UpdatedAt,
		&authorUsername,
		&authorAvatar,
	)
	if err != nil {
		return nil, err
	}

	a.Author = model.NewAuthorRef(a.AuthorID, authorUsername, authorAvatar)

	return &a, nil
}
