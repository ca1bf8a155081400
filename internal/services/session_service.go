package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/jobs"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/metrics"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/mood"
	"github.com/certbloom/certbloom/internal/repository"
	"github.com/certbloom/certbloom/internal/scoring"
	"github.com/certbloom/certbloom/internal/selection"
	"github.com/google/uuid"
)

// StartRequest asks for a new practice session. A zero SessionLength uses the
// configured default.
type StartRequest struct {
	UserID         string `json:"userId"`
	SubjectArea    string `json:"subjectArea"`
	SessionLength  int    `json:"sessionLength,omitempty"`
	FocusWeakAreas bool   `json:"focusWeakAreas"`
	Mood           string `json:"mood,omitempty"`
}

// StartedSession is the assembled session. SessionID is empty when no
// questions were available.
type StartedSession struct {
	SessionID string `json:"sessionId"`
	selection.Selection
	Mood       mood.Setting `json:"mood"`
	BreakAfter []int        `json:"breakAfter"`
}

// CompleteRequest submits a session's answers. TimeSpentSeconds and Confidence
// are optional and, when present, parallel QuestionIDs.
type CompleteRequest struct {
	SessionID        string    `json:"sessionId"`
	UserID           string    `json:"userId"`
	ConceptID        string    `json:"conceptId,omitempty"`
	QuestionIDs      []string  `json:"questionIds"`
	UserAnswers      []string  `json:"userAnswers"`
	TimeSpentSeconds []float64 `json:"timeSpentSeconds,omitempty"`
	Confidence       []int     `json:"confidence,omitempty"`
}

// CompletedSession is the scored session.
type CompletedSession struct {
	SessionID       string                 `json:"sessionId"`
	TotalQuestions  int                    `json:"totalQuestions"`
	CorrectAnswers  int                    `json:"correctAnswers"`
	ScorePercentage int                    `json:"scorePercentage"`
	MasteryAchieved bool                   `json:"masteryAchieved"`
	Outcomes        []scoring.Outcome      `json:"outcomes"`
	MasteryUpdates  []models.MasteryChange `json:"masteryUpdates"`
	DeferredUpdates int                    `json:"deferredUpdates"`
}

// SessionLimits bounds requested session lengths.
type SessionLimits struct {
	Default int
	Max     int
}

// SessionService starts and completes practice sessions
type SessionService interface {
	StartSession(ctx context.Context, req StartRequest) (*StartedSession, error)
	CompleteSession(ctx context.Context, req CompleteRequest) (*CompletedSession, error)
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
	contentRepo  repository.ContentRepository
	userRepo     repository.UserRepository
	progress     ProgressService
	selector     *selection.Selector
	moods        *mood.Modulator
	jobQueue     jobs.JobQueue
	limits       SessionLimits
	now          func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	contentRepo repository.ContentRepository,
	userRepo repository.UserRepository,
	progress ProgressService,
	selector *selection.Selector,
	moods *mood.Modulator,
	jobQueue jobs.JobQueue,
	limits SessionLimits,
) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		contentRepo:  contentRepo,
		userRepo:     userRepo,
		progress:     progress,
		selector:     selector,
		moods:        moods,
		jobQueue:     jobQueue,
		limits:       limits,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionService) StartSession(ctx context.Context, req StartRequest) (*StartedSession, error) {
	log := logger.FromContext(ctx).WithPrefix("sessions").WithField("user_id", req.UserID)

	length := req.SessionLength
	switch {
	case length == 0:
		length = s.limits.Default
	case length < 0:
		return nil, errors.NewValidationError("sessionLength", "must be greater than zero")
	case length > s.limits.Max:
		return nil, errors.NewValidationError("sessionLength", fmt.Sprintf("must not exceed %d", s.limits.Max))
	}
	setting := s.moods.Resolve(req.Mood)
	rankReq := selection.RankRequest{
		UserID:         strings.TrimSpace(req.UserID),
		SubjectArea:    strings.TrimSpace(req.SubjectArea),
		SessionLength:  length,
		FocusWeakAreas: req.FocusWeakAreas,
		Mood:           setting,
	}
	if err := rankReq.Validate(); err != nil {
		return nil, err
	}
	if _, err := requireUser(ctx, s.userRepo, rankReq.UserID); err != nil {
		return nil, err
	}
	if _, err := resolveSubjectArea(ctx, s.contentRepo, rankReq.SubjectArea); err != nil {
		return nil, err
	}

	sel, mode, err := s.selector.Select(ctx, rankReq)
	if err != nil {
		return nil, err
	}
	metrics.ObserveSelection(mode)

	started := &StartedSession{
		Selection:  sel,
		Mood:       setting,
		BreakAfter: s.moods.BreakIndices(setting.Label, len(sel.Questions)),
	}
	if len(sel.Questions) == 0 {
		log.Info("no questions available for %s", rankReq.SubjectArea)
		return started, nil
	}

	session := models.PracticeSession{
		ID:          uuid.NewString(),
		UserID:      rankReq.UserID,
		SubjectArea: rankReq.SubjectArea,
		Mood:        setting.Label,
		IsAdaptive:  sel.IsAdaptive,
		QuestionIDs: sel.IDs(),
		Status:      models.SessionActive,
		CreatedAt:   s.now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		log.Error("failed to create session: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	started.SessionID = session.ID

	log.Info("started %s session %s with %d questions (mood=%s)", mode, session.ID, len(sel.Questions), setting.Label)
	return started, nil
}

func validateComplete(req CompleteRequest) error {
	if strings.TrimSpace(req.SessionID) == "" {
		return errors.NewValidationError("sessionId", "is required")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return errors.NewValidationError("userId", "is required")
	}
	scoreReq := scoring.Request{QuestionIDs: req.QuestionIDs, UserAnswers: req.UserAnswers}
	if err := scoreReq.Validate(); err != nil {
		return err
	}
	if n := len(req.TimeSpentSeconds); n > 0 {
		if n != len(req.QuestionIDs) {
			return errors.NewValidationError("timeSpentSeconds", "must have the same length as questionIds")
		}
		for _, t := range req.TimeSpentSeconds {
			if t < 0 {
				return errors.NewValidationError("timeSpentSeconds", "must not be negative")
			}
		}
	}
	if n := len(req.Confidence); n > 0 {
		if n != len(req.QuestionIDs) {
			return errors.NewValidationError("confidence", "must have the same length as questionIds")
		}
		for _, c := range req.Confidence {
			if c < 1 || c > 5 {
				return errors.NewValidationError("confidence", "must be between 1 and 5")
			}
		}
	}
	return nil
}

// CompleteSession scores the answers, records attempts and the result in one
// write, then applies the per-topic mastery updates. An update whose write
// fails is queued once for deferred re-application.
func (s *sessionService) CompleteSession(ctx context.Context, req CompleteRequest) (*CompletedSession, error) {
	if err := validateComplete(req); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).WithPrefix("sessions").WithFields(map[string]any{
		"user_id":    req.UserID,
		"session_id": req.SessionID,
	})

	session, err := s.sessionRepo.Get(ctx, req.SessionID)
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	if session == nil || session.UserID != req.UserID {
		return nil, errors.NewNotFoundError("session", req.SessionID)
	}
	if session.Status == models.SessionCompleted {
		return nil, errors.NewConflictError("session already completed")
	}
	presented := make(map[string]bool, len(session.QuestionIDs))
	for _, id := range session.QuestionIDs {
		presented[id] = true
	}
	seen := make(map[string]bool, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		if !presented[id] {
			return nil, errors.NewValidationError("questionIds", fmt.Sprintf("question %s was not presented in this session", id))
		}
		if seen[id] {
			return nil, errors.NewValidationError("questionIds", fmt.Sprintf("question %s is answered twice", id))
		}
		seen[id] = true
	}

	keys, err := s.questionRepo.AnswerKeys(ctx, req.QuestionIDs)
	if err != nil {
		log.Error("failed to load answer keys: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	result, err := scoring.Score(scoring.Request{
		UserID:      req.UserID,
		ConceptID:   req.ConceptID,
		QuestionIDs: req.QuestionIDs,
		UserAnswers: req.UserAnswers,
	}, keys)
	if err != nil {
		return nil, err
	}

	now := s.now()
	attempts := make([]models.Attempt, len(result.Outcomes))
	for i, o := range result.Outcomes {
		a := models.Attempt{
			UserID:          req.UserID,
			QuestionID:      o.QuestionID,
			SessionID:       req.SessionID,
			SubmittedAnswer: o.SubmittedAnswer,
			IsCorrect:       o.IsCorrect,
			AttemptedAt:     now,
		}
		if len(req.TimeSpentSeconds) > 0 {
			a.TimeSpentSeconds = req.TimeSpentSeconds[i]
		}
		if len(req.Confidence) > 0 {
			c := req.Confidence[i]
			a.Confidence = &c
		}
		attempts[i] = a
	}
	stored := models.SessionResult{
		SessionID:       req.SessionID,
		UserID:          req.UserID,
		ConceptID:       req.ConceptID,
		QuestionIDs:     req.QuestionIDs,
		Answers:         req.UserAnswers,
		CorrectCount:    result.Correct,
		TotalCount:      result.Total,
		ScorePercentage: result.Percentage,
		CompletedAt:     now,
	}

	if _, err := s.sessionRepo.Complete(ctx, stored, attempts); err != nil {
		if stderrors.Is(err, repository.ErrSessionCompleted) {
			return nil, errors.NewConflictError("session already completed")
		}
		log.Error("failed to complete session: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	metrics.ObserveSessionScored(result.MasteryAchieved)

	out := &CompletedSession{
		SessionID:       req.SessionID,
		TotalQuestions:  result.Total,
		CorrectAnswers:  result.Correct,
		ScorePercentage: result.Percentage,
		MasteryAchieved: result.MasteryAchieved,
		Outcomes:        result.Outcomes,
		MasteryUpdates:  make([]models.MasteryChange, 0, len(result.Updates)),
	}
	for _, u := range result.Updates {
		change, err := s.progress.ApplyMasteryUpdate(ctx, u)
		if err == nil {
			out.MasteryUpdates = append(out.MasteryUpdates, change)
			metrics.ObserveMasteryUpdate(metrics.MasteryApplied)
			continue
		}
		log.WithError(err).Warn("mastery update for %s failed, deferring", u.TopicKey)
		if qerr := s.jobQueue.EnqueueMasteryUpdate(u); qerr != nil {
			log.WithError(qerr).Error("could not defer mastery update for %s", u.TopicKey)
			metrics.ObserveMasteryUpdate(metrics.MasteryDropped)
			continue
		}
		out.DeferredUpdates++
		metrics.ObserveMasteryUpdate(metrics.MasteryDeferred)
	}

	log.Info("session scored %d/%d (%d%%), %d topic updates, %d deferred",
		result.Correct, result.Total, result.Percentage, len(out.MasteryUpdates), out.DeferredUpdates)
	return out, nil
}
