package mocks

import (
	"context"

	"github.com/certbloom/certbloom/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s models.PracticeSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*models.PracticeSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PracticeSession), args.Error(1)
}

func (m *MockSessionRepository) Complete(ctx context.Context, result models.SessionResult, attempts []models.Attempt) ([]models.Attempt, error) {
	args := m.Called(ctx, result, attempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}

func (m *MockSessionRepository) GetResult(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResult), args.Error(1)
}

func (m *MockSessionRepository) RecentResults(ctx context.Context, userID string, limit int) ([]models.SessionResult, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionResult), args.Error(1)
}

func (m *MockSessionRepository) ListAttempts(ctx context.Context, userID, questionID string) ([]models.Attempt, error) {
	args := m.Called(ctx, userID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}
