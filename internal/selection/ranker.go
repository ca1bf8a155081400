package selection

import (
	"context"
	"fmt"

	"github.com/certbloom/certbloom/internal/models"
)

// CandidateStore is the read side the in-process ranker needs.
type CandidateStore interface {
	ListProgressForSubject(ctx context.Context, userID, subjectArea string) ([]models.ProgressRecord, error)
	ListCandidates(ctx context.Context, userID, subjectArea string) ([]models.QuestionCandidate, error)
}

// PlannerRanker ranks in process with Plan over rows read from the store.
type PlannerRanker struct {
	store  CandidateStore
	policy Policy
}

func NewPlannerRanker(store CandidateStore, policy Policy) *PlannerRanker {
	return &PlannerRanker{store: store, policy: policy}
}

func (r *PlannerRanker) Rank(ctx context.Context, req RankRequest) ([]Ranked, error) {
	progress, err := r.store.ListProgressForSubject(ctx, req.UserID, req.SubjectArea)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	candidates, err := r.store.ListCandidates(ctx, req.UserID, req.SubjectArea)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return Plan(r.policy, req, progress, candidates), nil
}
