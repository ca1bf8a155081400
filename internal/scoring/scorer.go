// Package scoring grades a completed practice session.
//
// Scoring is pure: Score returns the result together with the mastery updates
// the session implies, and leaves writing them to the caller.
package scoring

import (
	"math"
	"strings"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/models"
)

// Request is a submitted session.
type Request struct {
	UserID string
	// ConceptID is the topic used for questions that carry no concept of their own.
	ConceptID   string
	QuestionIDs []string
	UserAnswers []string
}

// Outcome is the grading of one answer.
type Outcome struct {
	QuestionID      string `json:"questionId"`
	SubmittedAnswer string `json:"submittedAnswer"`
	IsCorrect       bool   `json:"isCorrect"`
	TopicKey        string `json:"topicKey,omitempty"`
}

// Result is the scored session.
type Result struct {
	Correct         int
	Total           int
	Percentage      int
	MasteryAchieved bool
	Outcomes        []Outcome
	// Updates holds one entry per distinct topic in first-seen order.
	// ContentItemCount is left for the caller to fill.
	Updates []models.MasteryUpdate
}

// Validate checks the request shape without touching any answer key.
func (r Request) Validate() error {
	if len(r.QuestionIDs) == 0 {
		return errors.NewValidationError("questionIds", "must contain at least one question")
	}
	if len(r.UserAnswers) != len(r.QuestionIDs) {
		return errors.NewValidationError("userAnswers", "must have the same length as questionIds")
	}
	for _, id := range r.QuestionIDs {
		if strings.TrimSpace(id) == "" {
			return errors.NewValidationError("questionIds", "must not contain empty ids")
		}
	}
	return nil
}

// Percentage is round(100*correct/total). total must be positive.
func Percentage(correct, total int) int {
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Score grades req against keys, which must hold every question in the request.
// Answers match the key exactly; comparison is case-sensitive.
func Score(req Request, keys map[string]models.AnswerKey) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	type tally struct{ correct, total int }
	topics := make(map[string]*tally)
	var order []string

	res := Result{
		Total:    len(req.QuestionIDs),
		Outcomes: make([]Outcome, 0, len(req.QuestionIDs)),
	}
	for i, qid := range req.QuestionIDs {
		key, ok := keys[qid]
		if !ok {
			return Result{}, errors.NewNotFoundError("question", qid)
		}
		answer := req.UserAnswers[i]
		correct := answer == key.CorrectAnswer
		topic := key.TopicKey
		if topic == "" {
			topic = req.ConceptID
		}

		res.Outcomes = append(res.Outcomes, Outcome{
			QuestionID:      qid,
			SubmittedAnswer: answer,
			IsCorrect:       correct,
			TopicKey:        topic,
		})
		if correct {
			res.Correct++
		}
		if topic == "" {
			continue
		}
		t, seen := topics[topic]
		if !seen {
			t = &tally{}
			topics[topic] = t
			order = append(order, topic)
		}
		t.total++
		if correct {
			t.correct++
		}
	}

	res.Percentage = Percentage(res.Correct, res.Total)
	res.MasteryAchieved = res.Percentage >= models.MasteryAchievedPercent

	res.Updates = make([]models.MasteryUpdate, 0, len(order))
	for _, topic := range order {
		t := topics[topic]
		res.Updates = append(res.Updates, models.MasteryUpdate{
			UserID:     req.UserID,
			TopicKey:   topic,
			WasCorrect: 100*t.correct >= models.MasteryAchievedPercent*t.total,
		})
	}
	return res, nil
}
