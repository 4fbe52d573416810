// Package repository declares the storage contracts consumed by the service
// layer. Services depend on these interfaces only; the sqlite subpackage is
// the concrete backend, wired in at the composition root.
package repository

import (
	"context"

	"github.com/patinho/quack-board/internal/model"
)

// QuestionFilter narrows a question listing. Zero values mean "no filter".
// Language and Tag are exact matches; Query is a case-insensitive substring
// match over title OR description.
type QuestionFilter struct {
	Language string
	Tag      string
	Query    string
}

// UserRepository is the identity store.
//
// Reads never populate PasswordHash except GetUserByEmailWithHash — the one
// explicit opt-in path used by login.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmailWithHash(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser creates or refreshes the local account bound to a
	// GitHub identity. On return user.ID is the canonical local id.
	UpsertGitHubUser(ctx context.Context, user *model.User, githubID int64) error
	UpdateUser(ctx context.Context, user *model.User) error
}

// QuestionRepository stores questions.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *model.Question) error
	GetQuestionByID(ctx context.Context, id string) (*model.Question, error)
	// IncrementViews bumps the view counter by exactly 1, atomically
	// relative to the stored value.
	IncrementViews(ctx context.Context, id string) error
	ListQuestions(ctx context.Context, filter QuestionFilter) ([]model.Question, error)
	ListQuestionsByAuthor(ctx context.Context, authorID string) ([]model.Question, error)
	// DeleteQuestion removes a question; dependent answers go with it
	// (cascade).
	DeleteQuestion(ctx context.Context, id string) error
}

// AnswerRepository stores answers. AcceptAnswer and VoteAnswer are the only
// write paths for the accepted flag and the vote counter respectively.
type AnswerRepository interface {
	CreateAnswer(ctx context.Context, answer *model.Answer) error
	GetAnswerByID(ctx context.Context, id string) (*model.Answer, error)
	// ListAnswersByQuestion returns answers ordered accepted-first, then
	// votes descending, then arrival order.
	ListAnswersByQuestion(ctx context.Context, questionID string) ([]model.Answer, error)
	// AcceptAnswer marks one answer accepted and clears the flag on every
	// sibling of the same question, as a single atomic unit.
	AcceptAnswer(ctx context.Context, answerID string) error
	// VoteAnswer applies delta to the vote counter as an atomic increment
	// and returns the updated answer.
	VoteAnswer(ctx context.Context, answerID string, delta int64) (*model.Answer, error)
}

// StatsRepository computes the dashboard aggregate. Pure read.
type StatsRepository interface {
	Stats(ctx context.Context) (*model.Stats, error)
}
