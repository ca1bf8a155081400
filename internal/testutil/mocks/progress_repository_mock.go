package mocks

import (
	"context"

	"github.com/certbloom/certbloom/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Get(ctx context.Context, userID, topicKey string) (*models.ProgressRecord, error) {
	args := m.Called(ctx, userID, topicKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressRecord), args.Error(1)
}

func (m *MockProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.ProgressRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProgressRecord), args.Error(1)
}

func (m *MockProgressRepository) ListForSubject(ctx context.Context, userID, subjectArea string) ([]models.ProgressRecord, error) {
	args := m.Called(ctx, userID, subjectArea)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProgressRecord), args.Error(1)
}

func (m *MockProgressRepository) Upsert(ctx context.Context, rec models.ProgressRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
