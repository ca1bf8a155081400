package mocks

import (
	"context"
	"time"

	"github.com/certbloom/certbloom/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockQuestionRepository is a mock implementation of repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Get(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListByConcept(ctx context.Context, conceptID string, limit, offset int) ([]models.Question, error) {
	args := m.Called(ctx, conceptID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionRepository) InsertBatch(ctx context.Context, questions []models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) UpdateConcept(ctx context.Context, id, conceptID string, at time.Time) error {
	args := m.Called(ctx, id, conceptID, at)
	return args.Error(0)
}

func (m *MockQuestionRepository) UpdateCorrectAnswer(ctx context.Context, id, answer string, at time.Time) error {
	args := m.Called(ctx, id, answer, at)
	return args.Error(0)
}

func (m *MockQuestionRepository) AnswerKeys(ctx context.Context, ids []string) (map[string]models.AnswerKey, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.AnswerKey), args.Error(1)
}

func (m *MockQuestionRepository) ListCandidates(ctx context.Context, userID, subjectArea string) ([]models.QuestionCandidate, error) {
	args := m.Called(ctx, userID, subjectArea)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuestionCandidate), args.Error(1)
}

func (m *MockQuestionRepository) RandomQuestionIDs(ctx context.Context, subjectArea string, limit int) ([]string, error) {
	args := m.Called(ctx, subjectArea, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
