package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/mastery"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
)

const recentResultsLimit = 5

// ResultView is a stored session result with its derived mastery flag.
type ResultView struct {
	models.SessionResult
	MasteryAchieved bool `json:"masteryAchieved"`
}

// ProgressReport is a user's progress, optionally scoped to a subject area.
type ProgressReport struct {
	UserID         string                  `json:"userId"`
	SubjectArea    string                  `json:"subjectArea,omitempty"`
	Records        []models.ProgressRecord `json:"records"`
	Summary        models.ProgressSummary  `json:"summary"`
	RecentSessions []ResultView            `json:"recentSessions"`
}

// ProgressService handles mastery updates and progress reporting
type ProgressService interface {
	ApplyMasteryUpdate(ctx context.Context, u models.MasteryUpdate) (models.MasteryChange, error)
	GetProgress(ctx context.Context, userID, subjectArea string) (*ProgressReport, error)
}

type progressService struct {
	progressRepo repository.ProgressRepository
	contentRepo  repository.ContentRepository
	sessionRepo  repository.SessionRepository
	userRepo     repository.UserRepository
	policy       mastery.Policy
	now          func() time.Time
}

// NewProgressService creates a new ProgressService
func NewProgressService(
	progressRepo repository.ProgressRepository,
	contentRepo repository.ContentRepository,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	policy mastery.Policy,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		contentRepo:  contentRepo,
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		policy:       policy,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ApplyMasteryUpdate folds one topic outcome into the stored record. A zero
// ContentItemCount is filled from the topic's content items.
func (s *progressService) ApplyMasteryUpdate(ctx context.Context, u models.MasteryUpdate) (models.MasteryChange, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id": u.UserID,
		"topic":   u.TopicKey,
	})
	if u.UserID == "" || u.TopicKey == "" {
		return models.MasteryChange{}, errors.NewValidationError("topicKey", "update needs a user and a topic")
	}

	if u.ContentItemCount <= 0 {
		n, err := s.contentRepo.CountContentItems(ctx, u.TopicKey)
		if err != nil {
			log.Error("failed to count content items: %v", err)
			return models.MasteryChange{}, errors.NewStoreUnavailableError(err)
		}
		u.ContentItemCount = n
	}

	existing, err := s.progressRepo.Get(ctx, u.UserID, u.TopicKey)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return models.MasteryChange{}, errors.NewStoreUnavailableError(err)
	}

	rec, change := s.policy.Apply(existing, u, s.now())
	if err := s.progressRepo.Upsert(ctx, rec); err != nil {
		log.Error("failed to save progress: %v", err)
		return models.MasteryChange{}, errors.NewStoreUnavailableError(err)
	}
	log.Debug("mastery %.4f -> %.4f (%s)", change.Previous, change.Current, change.Stage)
	return change, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID, subjectArea string) (*ProgressReport, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	log.Debug("getting progress: subject_area=%s", subjectArea)

	if strings.TrimSpace(userID) == "" {
		return nil, errors.NewValidationError("userId", "is required")
	}
	if _, err := requireUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	var (
		records []models.ProgressRecord
		err     error
	)
	if subjectArea != "" {
		if _, err := resolveSubjectArea(ctx, s.contentRepo, subjectArea); err != nil {
			return nil, err
		}
		records, err = s.progressRepo.ListForSubject(ctx, userID, subjectArea)
	} else {
		records, err = s.progressRepo.ListByUser(ctx, userID)
	}
	if err != nil {
		log.Error("failed to list progress: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}

	results, err := s.sessionRepo.RecentResults(ctx, userID, recentResultsLimit)
	if err != nil {
		log.Error("failed to list recent results: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}

	now := s.now()
	for i := range records {
		records[i].NeedsReview = s.policy.NeedsReview(records[i].Mastery, records[i].LastPracticedAt, now)
	}
	if records == nil {
		records = []models.ProgressRecord{}
	}
	views := make([]ResultView, len(results))
	for i, r := range results {
		views[i] = ResultView{SessionResult: r, MasteryAchieved: r.MasteryAchieved()}
	}

	return &ProgressReport{
		UserID:         userID,
		SubjectArea:    subjectArea,
		Records:        records,
		Summary:        Summarize(records),
		RecentSessions: views,
	}, nil
}

// Summarize aggregates records; every stage appears in ByStage.
func Summarize(records []models.ProgressRecord) models.ProgressSummary {
	sum := models.ProgressSummary{
		Topics:  len(records),
		ByStage: make(map[models.Stage]int, len(models.Stages)),
	}
	for _, st := range models.Stages {
		sum.ByStage[st] = 0
	}
	if len(records) == 0 {
		return sum
	}
	total := 0.0
	for _, r := range records {
		sum.ByStage[r.Stage]++
		total += r.Mastery
		if r.Stage == models.StageMastered {
			sum.Mastered++
		}
		if r.NeedsReview {
			sum.NeedsReview++
		}
	}
	sum.AverageMastery = math.Round(total/float64(len(records))*10000) / 10000
	return sum
}
