package mocks

import (
	"context"

	"github.com/certbloom/certbloom/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockContentRepository is a mock implementation of repository.ContentRepository
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) ListCertifications(ctx context.Context) ([]models.Certification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Certification), args.Error(1)
}

func (m *MockContentRepository) GetCertification(ctx context.Context, id string) (*models.Certification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Certification), args.Error(1)
}

func (m *MockContentRepository) InsertCertification(ctx context.Context, c models.Certification) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContentRepository) ListDomains(ctx context.Context, certificationID string) ([]models.Domain, error) {
	args := m.Called(ctx, certificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Domain), args.Error(1)
}

func (m *MockContentRepository) GetDomain(ctx context.Context, id string) (*models.Domain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Domain), args.Error(1)
}

func (m *MockContentRepository) InsertDomain(ctx context.Context, d models.Domain) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockContentRepository) ListConcepts(ctx context.Context, domainID string) ([]models.Concept, error) {
	args := m.Called(ctx, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Concept), args.Error(1)
}

func (m *MockContentRepository) GetConcept(ctx context.Context, id string) (*models.Concept, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Concept), args.Error(1)
}

func (m *MockContentRepository) InsertConcept(ctx context.Context, c models.Concept) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContentRepository) ListContentItems(ctx context.Context, conceptID string) ([]models.ContentItem, error) {
	args := m.Called(ctx, conceptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContentItem), args.Error(1)
}

func (m *MockContentRepository) InsertContentItem(ctx context.Context, item models.ContentItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockContentRepository) CountContentItems(ctx context.Context, conceptID string) (int, error) {
	args := m.Called(ctx, conceptID)
	return args.Int(0), args.Error(1)
}
