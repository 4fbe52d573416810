package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
)

// compile-time check that *DB implements repository.QuestionRepository
var _ repository.QuestionRepository = (*DB)(nil)

// questionSelect is the shared SELECT for question reads: the row itself,
// the author's public fields, and the answer count.
const questionSelect = `
	SELECT q.id, q.title, q.description, q.code_snippet, q.language, q.tags,
	       q.author_id, q.views, q.created_at, q.updated_at,
	       u.username, u.avatar,
	       (SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id) AS answer_count
	FROM questions q
	JOIN users u ON u.id = q.author_id`

// CreateQuestion inserts a new question. ID and timestamps are generated here;
// Language defaults were already applied by the service.
func (db *DB) CreateQuestion(ctx context.Context, question *model.Question) error {
	now := time.Now()
	question.ID = xid.New().String()
	question.CreatedAt = now
	question.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO questions (id, title, description, code_snippet, language, tags, author_id, views, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		question.ID,
		question.Title,
		question.Description,
		question.CodeSnippet,
		question.Language,
		joinTags(question.Tags),
		question.AuthorID,
		question.CreatedAt,
		question.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating question: %w", err)
	}

	return nil
}

// GetQuestionByID retrieves a single question with author and answer count.
// This is a plain read — the view counter bump is a separate operation
// (IncrementViews) so list-adjacent reads don't inflate views.
func (db *DB) GetQuestionByID(ctx context.Context, id string) (*model.Question, error) {
	row := db.conn.QueryRowContext(ctx, questionSelect+` WHERE q.id = ?`, id)

	q, err := scanQuestion(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("question", id)
		}
		return nil, fmt.Errorf("sqlite: getting question %s: %w", id, err)
	}

	return q, nil
}

// IncrementViews bumps the view counter by exactly 1.
//
// The increment is relative to the STORED value (views = views + 1), never
// a write-back of a previously read count — concurrent detail reads each
// land their increment, no lost updates.
func (db *DB) IncrementViews(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE questions SET views = views + 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing views for %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("question", id)
	}

	return nil
}

// ListQuestions retrieves questions newest-first, optionally filtered by language
// (exact), tag (exact membership) and free text (case-insensitive substring
// over title OR description).
func (db *DB) ListQuestions(ctx context.Context, filter repository.QuestionFilter) ([]model.Question, error) {
	var (
		where []string
		args  []any
	)

	if filter.Language != "" {
		where = append(where, `q.language = ?`)
		args = append(args, filter.Language)
	}
	if filter.Tag != "" {
		// Tags are stored comma-joined; wrapping both sides in commas turns
		// membership into a substring check: ",go,web," LIKE "%,go,%".
		where = append(where, `(',' || q.tags || ',') LIKE ?`)
		args = append(args, "%,"+filter.Tag+",%")
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		where = append(where, `(LOWER(q.title) LIKE ? OR LOWER(q.description) LIKE ?)`)
		args = append(args, pattern, pattern)
	}

	query := questionSelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY q.created_at DESC, q.id DESC`

	return db.listQuestions(ctx, query, args...)
}

// ListQuestionsByAuthor retrieves a user's questions, newest first.
func (db *DB) ListQuestionsByAuthor(ctx context.Context, authorID string) ([]model.Question, error) {
	return db.listQuestions(ctx,
		questionSelect+` WHERE q.author_id = ? ORDER BY q.created_at DESC, q.id DESC`,
		authorID,
	)
}

// DeleteQuestion removes a question. Its answers go with it via ON DELETE CASCADE
// (foreign keys are enabled at connection time).
func (db *DB) DeleteQuestion(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting question %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("question", id)
	}

	return nil
}

func (db *DB) listQuestions(ctx context.Context, query string, args ...any) ([]model.Question, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions: %w", err)
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning question row: %w", err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating questions: %w", err)
	}

	return questions, nil
}

// scanQuestion reads one questionSelect row. Taking the Scan function lets
// the same code serve both *sql.Row and *sql.Rows.
func scanQuestion(scan func(...any) error) (*model.Question, error) {
	var (
		q              model.Question
		tags           string
		authorUsername string
		authorAvatar   string
	)

	err := scan(
		&q.ID,
		&q.Title,
		&q.Description,
		&q.CodeSnippet,
		&q.Language,
		&tags,
		&q.AuthorID,
		&q.Views,
		&q.CreatedAt,
		&q.UpdatedAt,
		&authorUsername,
		&authorAvatar,
		&q.AnswerCount,
	)
	if err != nil {
		return nil, err
	}

	q.Tags = splitTags(tags)
	q.Author = model.NewAuthorRef(q.AuthorID, authorUsername, authorAvatar)

	return &q, nil
}

// joinTags flattens a tag list into the stored comma-joined form.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// splitTags is the inverse of joinTags; "" means no tags, not one empty tag.
func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
