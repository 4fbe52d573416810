package model

import "time"

// Answer is a reply to exactly one question. QuestionID is immutable after
// creation; answers are destroyed only by cascading deletion of their parent.
//
// INVARIANT: for any question, at most one answer has IsAccepted = true at
// any observable instant. The flag flips only through the repository's
// transactional Accept; Votes mutates only through the atomic Vote
// increment. Neither field is ever written from application-computed values.
type Answer struct {
	ID          string     `json:"id"`
	QuestionID  string     `json:"questionId"`
	Content     string     `json:"content"`
	CodeSnippet string     `json:"code_snippet"`
	AuthorID    string     `json:"authorId"`
	Author      *AuthorRef `json:"author,omitempty"`
	IsAccepted  bool       `json:"is_accepted"`
	Votes       int64      `json:"votes"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Vote directions accepted by the vote endpoint. Anything that is not
// "down" counts as an up-vote, matching the board's observable behaviour.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Stats is the dashboard aggregate: totals plus a per-language histogram
// sorted by count descending.
type Stats struct {
	TotalQuestions int64           `json:"total_q"`
	TotalAnswers   int64           `json:"total_a"`
	AcceptedCount  int64           `json:"accepted_count"`
	Languages      []LanguageCount `json:"languages"`
}

// LanguageCount is one bucket of the language histogram.
type LanguageCount struct {
	Language string `json:"language"`
	Count    int64  `json:"count"`
}
