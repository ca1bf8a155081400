package models

import "time"

// MasteryAchievedPercent is the session score at or above which a session
// counts as mastered.
const MasteryAchievedPercent = 80

// SessionStatus is the lifecycle state of a practice session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// PracticeSession is a started practice session and the questions presented in it.
type PracticeSession struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	SubjectArea string        `json:"subjectArea"`
	Mood        string        `json:"mood"`
	IsAdaptive  bool          `json:"isAdaptive"`
	QuestionIDs []string      `json:"questionIds"`
	Status      SessionStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// Attempt is one submitted answer. Attempts are append-only.
type Attempt struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"userId"`
	QuestionID       string    `json:"questionId"`
	SessionID        string    `json:"sessionId,omitempty"`
	SubmittedAnswer  string    `json:"submittedAnswer"`
	IsCorrect        bool      `json:"isCorrect"`
	TimeSpentSeconds float64   `json:"timeSpentSeconds"`
	AttemptNumber    int       `json:"attemptNumber"`
	Confidence       *int      `json:"confidence,omitempty"`
	AttemptedAt      time.Time `json:"attemptedAt"`
}

// SessionResult is the immutable outcome of a completed session.
type SessionResult struct {
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId"`
	ConceptID       string    `json:"conceptId,omitempty"`
	QuestionIDs     []string  `json:"questionIds"`
	Answers         []string  `json:"answers"`
	CorrectCount    int       `json:"correctCount"`
	TotalCount      int       `json:"totalCount"`
	ScorePercentage int       `json:"scorePercentage"`
	CompletedAt     time.Time `json:"completedAt"`
}

// MasteryAchieved is derived from the score and never stored.
func (r SessionResult) MasteryAchieved() bool {
	return r.ScorePercentage >= MasteryAchievedPercent
}
