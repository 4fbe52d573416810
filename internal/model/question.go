package model

import "time"

// DefaultLanguage is assumed when a question is posted without a language tag.
const DefaultLanguage = "javascript"

// Question is a post asking for help, tagged by programming language and
// free-text tags.
//
// Views is monotonic non-decreasing: it is only ever bumped by the
// repository's atomic increment on the detail read, never written from a
// value the application computed.
type Question struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CodeSnippet string     `json:"code_snippet"`
	Language    string     `json:"language"`
	Tags        []string   `json:"tags"`
	AuthorID    string     `json:"authorId"`
	Author      *AuthorRef `json:"author,omitempty"`
	Views       int64      `json:"views"`
	AnswerCount int        `json:"answer_count"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// AuthorRef is the public sliver of a user attached to questions and
// answers on reads: just enough to render a byline. Mirrors the original
// board's populate('author', 'username avatar').
type AuthorRef struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// NewAuthorRef builds the byline for a stored avatar filename.
func NewAuthorRef(id, username, avatar string) *AuthorRef {
	ref := &AuthorRef{ID: id, Username: username}
	if avatar != "" {
		ref.AvatarURL = "/storage/" + avatar
	}
	return ref
}

// QuestionDetail is the detail-view shape: the question plus its answers
// ordered accepted-first, then by votes descending.
type QuestionDetail struct {
	Question
	Answers []Answer `json:"answers"`
}
