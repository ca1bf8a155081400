// Package selection assembles adaptive practice sessions.
//
// A Ranker proposes an ordered, reason-tagged question list for a user. The
// Selector wraps a Ranker and falls back to an unweighted pull when ranking
// fails or yields nothing.
package selection

import (
	"context"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/mood"
)

// Reason explains why a question was picked.
type Reason string

const (
	ReasonWeakArea          Reason = "weak_area"
	ReasonReinforcement     Reason = "reinforcement"
	ReasonConfidenceBuilder Reason = "confidence_builder"
	ReasonStandard          Reason = "standard"
)

// ReasonCodeNoQuestions marks an empty selection. It is not an error.
const ReasonCodeNoQuestions = "no_questions_available"

// RankRequest asks for up to SessionLength questions.
type RankRequest struct {
	UserID         string
	SubjectArea    string
	SessionLength  int
	FocusWeakAreas bool
	// Mood shapes the review/new/application mix. A zero Setting applies no mix.
	Mood mood.Setting
}

// Validate checks the request before any store access.
func (r RankRequest) Validate() error {
	if r.UserID == "" {
		return errors.NewValidationError("userId", "is required")
	}
	if r.SubjectArea == "" {
		return errors.NewValidationError("subjectArea", "is required")
	}
	if r.SessionLength <= 0 {
		return errors.NewValidationError("sessionLength", "must be greater than zero")
	}
	return nil
}

// Ranked is one selected question.
type Ranked struct {
	QuestionID    string  `json:"questionId"`
	Reason        Reason  `json:"reason"`
	PriorityScore float64 `json:"priorityScore"`
}

// Ranker produces a personalized question order.
type Ranker interface {
	Rank(ctx context.Context, req RankRequest) ([]Ranked, error)
}

// RankerFunc adapts a function to Ranker.
type RankerFunc func(ctx context.Context, req RankRequest) ([]Ranked, error)

func (f RankerFunc) Rank(ctx context.Context, req RankRequest) ([]Ranked, error) {
	return f(ctx, req)
}

// StandardSource serves the unweighted fallback pull.
type StandardSource interface {
	RandomQuestionIDs(ctx context.Context, subjectArea string, limit int) ([]string, error)
}

// Selection is the assembled session.
type Selection struct {
	Questions  []Ranked `json:"questions"`
	IsAdaptive bool     `json:"isAdaptive"`
	Message    string   `json:"message"`
	ReasonCode string   `json:"reasonCode,omitempty"`
}

// IDs returns the selected question ids in order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.QuestionID
	}
	return ids
}
