package repository

import (
	"context"
	"errors"
	"time"

	"github.com/certbloom/certbloom/internal/models"
)

// ErrSessionCompleted is returned when a session is completed a second time.
var ErrSessionCompleted = errors.New("session already completed")

// ContentRepository handles the certification > domain > concept > content item hierarchy.
type ContentRepository interface {
	ListCertifications(ctx context.Context) ([]models.Certification, error)
	GetCertification(ctx context.Context, id string) (*models.Certification, error)
	InsertCertification(ctx context.Context, c models.Certification) error
	ListDomains(ctx context.Context, certificationID string) ([]models.Domain, error)
	GetDomain(ctx context.Context, id string) (*models.Domain, error)
	InsertDomain(ctx context.Context, d models.Domain) error
	ListConcepts(ctx context.Context, domainID string) ([]models.Concept, error)
	GetConcept(ctx context.Context, id string) (*models.Concept, error)
	InsertConcept(ctx context.Context, c models.Concept) error
	ListContentItems(ctx context.Context, conceptID string) ([]models.ContentItem, error)
	InsertContentItem(ctx context.Context, item models.ContentItem) error
	CountContentItems(ctx context.Context, conceptID string) (int, error)
}

// QuestionRepository handles questions, their answer choices and candidate lookups.
type QuestionRepository interface {
	Get(ctx context.Context, id string) (*models.Question, error)
	ListByConcept(ctx context.Context, conceptID string, limit, offset int) ([]models.Question, error)
	InsertBatch(ctx context.Context, questions []models.Question) error
	UpdateConcept(ctx context.Context, id, conceptID string, at time.Time) error
	UpdateCorrectAnswer(ctx context.Context, id, answer string, at time.Time) error
	AnswerKeys(ctx context.Context, ids []string) (map[string]models.AnswerKey, error)
	ListCandidates(ctx context.Context, userID, subjectArea string) ([]models.QuestionCandidate, error)
	RandomQuestionIDs(ctx context.Context, subjectArea string, limit int) ([]string, error)
}

// UserRepository handles learner accounts.
type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, u models.User) (*models.User, error)
}

// SessionRepository handles practice sessions, attempts and session results.
type SessionRepository interface {
	Create(ctx context.Context, s models.PracticeSession) error
	Get(ctx context.Context, id string) (*models.PracticeSession, error)
	// Complete writes the attempts and the result and marks the session
	// completed in one transaction. It returns ErrSessionCompleted when the
	// session is no longer active.
	Complete(ctx context.Context, result models.SessionResult, attempts []models.Attempt) ([]models.Attempt, error)
	GetResult(ctx context.Context, sessionID string) (*models.SessionResult, error)
	RecentResults(ctx context.Context, userID string, limit int) ([]models.SessionResult, error)
	ListAttempts(ctx context.Context, userID, questionID string) ([]models.Attempt, error)
}

// ProgressRepository handles per-user, per-topic mastery records.
type ProgressRepository interface {
	Get(ctx context.Context, userID, topicKey string) (*models.ProgressRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.ProgressRecord, error)
	ListForSubject(ctx context.Context, userID, subjectArea string) ([]models.ProgressRecord, error)
	Upsert(ctx context.Context, rec models.ProgressRecord) error
}
