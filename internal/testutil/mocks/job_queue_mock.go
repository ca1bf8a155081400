package mocks

import (
	"github.com/certbloom/certbloom/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueMasteryUpdate(u models.MasteryUpdate) error {
	args := m.Called(u)
	return args.Error(0)
}
