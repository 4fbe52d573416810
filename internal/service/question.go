package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
)

// MaxTitleLength caps question titles, matching the original schema.
const MaxTitleLength = 255

// QuestionService handles the question side of the board: asking, listing
// with filters, and the side-effecting detail read.
type QuestionService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	logger    *slog.Logger
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	logger *slog.Logger,
) *QuestionService {
	return &QuestionService{
		questions: questions,
		answers:   answers,
		logger:    logger,
	}
}

// Create validates and saves a new question for the given author.
//
// Title and description violations are aggregated into one ValidationError
// (the caller sees every problem at once, like the original board). The
// language tag defaults to "javascript"; tags arrive already split — the
// handler accepts both a JSON list and a comma-separated string.
func (s *QuestionService) Create(ctx context.Context, authorID, title, description, codeSnippet, language string, tags []string) (*model.Question, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	var v apperror.ValidationErrors
	if title == "" {
		v.Add("title", "title is required")
	} else if utf8.RuneCountInString(title) > MaxTitleLength {
		v.Add("title", fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if description == "" {
		v.Add("description", "description is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	language = strings.TrimSpace(language)
	if language == "" {
		language = model.DefaultLanguage
	}

	question := &model.Question{
		Title:       title,
		Description: description,
		CodeSnippet: codeSnippet,
		Language:    language,
		Tags:        cleanTags(tags),
		AuthorID:    authorID,
	}

	if err := s.questions.CreateQuestion(ctx, question); err != nil {
		s.logger.Error("failed to create question",
			slog.String("authorID", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating question: %w", err)
	}

	s.logger.Info("question created",
		slog.String("id", question.ID),
		slog.String("language", question.Language),
	)

	return question, nil
}

// List returns questions newest-first, filtered by language, tag and free
// text. Each carries its answer count.
func (s *QuestionService) List(ctx context.Context, filter repository.QuestionFilter) ([]model.Question, error) {
	questions, err := s.questions.ListQuestions(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list questions", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	return questions, nil
}

// ListByAuthor returns a user's questions, newest first.
func (s *QuestionService) ListByAuthor(ctx context.Context, authorID string) ([]model.Question, error) {
	questions, err := s.questions.ListQuestionsByAuthor(ctx, authorID)
	if err != nil {
		s.logger.Error("failed to list questions by author",
			slog.String("authorID", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing questions by author: %w", err)
	}
	return questions, nil
}

// GetDetail is the side-effecting detail read: it increments the view
// counter by exactly 1 — persisted BEFORE the response is assembled — and
// returns the question with its answers ordered accepted-first, then votes
// descending.
func (s *QuestionService) GetDetail(ctx context.Context, id string) (*model.QuestionDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "question ID is required")
	}

	// The increment also doubles as the existence check: 0 rows → NotFound.
	if err := s.questions.IncrementViews(ctx, id); err != nil {
		return nil, err
	}

	question, err := s.questions.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	answers, err := s.answers.ListAnswersByQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing answers for question %s: %w", id, err)
	}

	return &model.QuestionDetail{Question: *question, Answers: answers}, nil
}

// Delete removes a question and, via cascade, every answer attached to it.
func (s *QuestionService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "question ID is required")
	}

	if err := s.questions.DeleteQuestion(ctx, id); err != nil {
		return err
	}

	s.logger.Info("question deleted", slog.String("id", id))
	return nil
}

// cleanTags trims whitespace and drops empty entries.
func cleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}
