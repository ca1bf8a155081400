package services

import (
	"context"
	"strings"
	"time"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
)

const (
	defaultQuestionPageSize = 50
	maxQuestionPageSize     = 200
)

// QuestionService handles question lookups and the two admin edits
type QuestionService interface {
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	ListQuestions(ctx context.Context, conceptID string, limit, offset int) ([]models.Question, error)
	Recategorize(ctx context.Context, id, conceptID string) (*models.Question, error)
	FixAnswerKey(ctx context.Context, id, answer string) (*models.Question, error)
}

type questionService struct {
	questionRepo repository.QuestionRepository
	contentRepo  repository.ContentRepository
}

// NewQuestionService creates a new QuestionService
func NewQuestionService(questionRepo repository.QuestionRepository, contentRepo repository.ContentRepository) QuestionService {
	return &questionService{
		questionRepo: questionRepo,
		contentRepo:  contentRepo,
	}
}

func (s *questionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting question: id=%s", id)

	q, err := s.questionRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get question: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	if q == nil {
		return nil, errors.NewNotFoundError("question", id)
	}
	return q, nil
}

func (s *questionService) ListQuestions(ctx context.Context, conceptID string, limit, offset int) ([]models.Question, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing questions: concept_id=%s limit=%d offset=%d", conceptID, limit, offset)

	if limit <= 0 {
		limit = defaultQuestionPageSize
	}
	if limit > maxQuestionPageSize {
		limit = maxQuestionPageSize
	}
	if offset < 0 {
		return nil, errors.NewValidationError("offset", "must not be negative")
	}
	if err := requireConcept(ctx, s.contentRepo, conceptID); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.ListByConcept(ctx, conceptID, limit, offset)
	if err != nil {
		log.Error("failed to list questions: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	return questions, nil
}

// Recategorize moves a question into a concept.
func (s *questionService) Recategorize(ctx context.Context, id, conceptID string) (*models.Question, error) {
	log := logger.FromContext(ctx).WithField("question_id", id)
	log.Info("recategorizing question into concept %s", conceptID)

	if err := requireConcept(ctx, s.contentRepo, conceptID); err != nil {
		return nil, err
	}
	if _, err := s.GetQuestion(ctx, id); err != nil {
		return nil, err
	}
	if err := s.questionRepo.UpdateConcept(ctx, id, conceptID, time.Now().UTC()); err != nil {
		log.Error("failed to recategorize question: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	return s.GetQuestion(ctx, id)
}

// FixAnswerKey replaces the correct answer. The new answer must name one of the
// question's existing choices.
func (s *questionService) FixAnswerKey(ctx context.Context, id, answer string) (*models.Question, error) {
	log := logger.FromContext(ctx).WithField("question_id", id)
	answer = strings.ToUpper(strings.TrimSpace(answer))
	if !models.ValidChoiceLabel(answer) {
		return nil, errors.NewValidationError("correctAnswer", "must be one of A-E")
	}

	q, err := s.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.HasChoice(answer) {
		return nil, errors.NewValidationError("correctAnswer", "must name an existing choice")
	}
	if q.CorrectAnswer == answer {
		return q, nil
	}

	log.Info("fixing answer key: %s -> %s", q.CorrectAnswer, answer)
	if err := s.questionRepo.UpdateCorrectAnswer(ctx, id, answer, time.Now().UTC()); err != nil {
		log.Error("failed to update answer key: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	return s.GetQuestion(ctx, id)
}
