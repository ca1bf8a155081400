package services

import (
	"context"

	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
	"github.com/certbloom/certbloom/internal/selection"
)

type candidateStore struct {
	questionRepo repository.QuestionRepository
	progressRepo repository.ProgressRepository
}

// NewCandidateStore feeds the in-process ranker from the question and progress repositories.
func NewCandidateStore(questionRepo repository.QuestionRepository, progressRepo repository.ProgressRepository) selection.CandidateStore {
	return &candidateStore{questionRepo: questionRepo, progressRepo: progressRepo}
}

func (c *candidateStore) ListProgressForSubject(ctx context.Context, userID, subjectArea string) ([]models.ProgressRecord, error) {
	return c.progressRepo.ListForSubject(ctx, userID, subjectArea)
}

func (c *candidateStore) ListCandidates(ctx context.Context, userID, subjectArea string) ([]models.QuestionCandidate, error) {
	return c.questionRepo.ListCandidates(ctx, userID, subjectArea)
}
