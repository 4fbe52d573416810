package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
)

// AnswerService owns the answer lifecycle: posting, acceptance, voting.
type AnswerService struct {
	answers   repository.AnswerRepository
	questions repository.QuestionRepository
	logger    *slog.Logger
}

// NewAnswerService creates an AnswerService.
func NewAnswerService(
	answers repository.AnswerRepository,
	questions repository.QuestionRepository,
	logger *slog.Logger,
) *AnswerService {
	return &AnswerService{
		answers:   answers,
		questions: questions,
		logger:    logger,
	}
}

// Create posts an answer to a question. The question must exist (404
// otherwise) and content is required.
func (s *AnswerService) Create(ctx context.Context, questionID, authorID, content, codeSnippet string) (*model.Answer, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	if _, err := s.questions.GetQuestionByID(ctx, questionID); err != nil {
		return nil, err
	}

	answer := &model.Answer{
		QuestionID:  questionID,
		Content:     content,
		CodeSnippet: codeSnippet,
		AuthorID:    authorID,
	}

	if err := s.answers.CreateAnswer(ctx, answer); err != nil {
		s.logger.Error("failed to create answer",
			slog.String("questionID", questionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating answer: %w", err)
	}

	s.logger.Info("answer created",
		slog.String("id", answer.ID),
		slog.String("questionID", questionID),
	)

	return answer, nil
}

// Accept marks an answer as the question's accepted solution, demoting any
// previously accepted sibling. The clear-all + set-one pair is one atomic
// unit inside the repository, so the "at most one accepted answer per
// question" invariant holds even under concurrent accepts.
//
// Any authenticated user may accept — the board has never restricted this
// to the question's author, and that behaviour is preserved deliberately.
func (s *AnswerService) Accept(ctx context.Context, answerID string) error {
	answerID = strings.TrimSpace(answerID)
	if answerID == "" {
		return apperror.ValidationFailed("id", "answer ID is required")
	}

	if err := s.answers.AcceptAnswer(ctx, answerID); err != nil {
		return err
	}

	s.logger.Info("answer accepted", slog.String("id", answerID))
	return nil
}

// Vote applies a directional vote to an answer and returns the updated
// record. "down" subtracts one; any other direction adds one — the board's
// long-standing observable behaviour. Voting is anonymous and repeatable:
// no per-caller dedup exists, on purpose.
func (s *AnswerService) Vote(ctx context.Context, answerID, direction string) (*model.Answer, error) {
	answerID = strings.TrimSpace(answerID)
	if answerID == "" {
		return nil, apperror.ValidationFailed("id", "answer ID is required")
	}

	var delta int64 = 1
	if direction == model.VoteDown {
		delta = -1
	}

	answer, err := s.answers.VoteAnswer(ctx, answerID, delta)
	if err != nil {
		return nil, err
	}

	s.logger.Info("answer voted",
		slog.String("id", answerID),
		slog.Int64("delta", delta),
		slog.Int64("votes", answer.Votes),
	)

	return answer, nil
}
