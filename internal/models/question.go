package models

import (
	"strings"
	"time"
)

// DifficultyTier is the ordinal difficulty of a question.
type DifficultyTier string

const (
	DifficultyFoundation  DifficultyTier = "foundation"
	DifficultyApplication DifficultyTier = "application"
	DifficultyAdvanced    DifficultyTier = "advanced"
)

// Rank orders tiers: foundation < application < advanced. Unknown tiers rank 0.
func (d DifficultyTier) Rank() int {
	switch d {
	case DifficultyFoundation:
		return 1
	case DifficultyApplication:
		return 2
	case DifficultyAdvanced:
		return 3
	default:
		return 0
	}
}

// Valid reports whether d is one of the three tiers.
func (d DifficultyTier) Valid() bool {
	return d.Rank() > 0
}

// ParseDifficulty accepts tier names, the legacy easy/medium/hard labels and 1-3.
func ParseDifficulty(s string) (DifficultyTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foundation", "easy", "1":
		return DifficultyFoundation, true
	case "application", "medium", "2":
		return DifficultyApplication, true
	case "advanced", "hard", "3":
		return DifficultyAdvanced, true
	default:
		return "", false
	}
}

// Question types.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeScenario       = "scenario"
	QuestionTypeTrueFalse      = "true_false"
)

// ChoiceLabels are the answer choice labels in presentation order.
var ChoiceLabels = []string{"A", "B", "C", "D", "E"}

// ValidChoiceLabel reports whether label is one of ChoiceLabels.
func ValidChoiceLabel(label string) bool {
	for _, l := range ChoiceLabels {
		if l == label {
			return true
		}
	}
	return false
}

type Question struct {
	ID              string         `json:"id"`
	CertificationID string         `json:"certificationId"`
	ConceptID       string         `json:"conceptId,omitempty"`
	DomainID        string         `json:"domainId,omitempty"`
	QuestionText    string         `json:"questionText"`
	QuestionType    string         `json:"questionType"`
	Difficulty      DifficultyTier `json:"difficulty"`
	CognitiveLevel  string         `json:"cognitiveLevel,omitempty"`
	CorrectAnswer   string         `json:"correctAnswer"`
	Explanation     string         `json:"explanation,omitempty"`
	Choices         []AnswerChoice `json:"choices,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type AnswerChoice struct {
	QuestionID string `json:"-"`
	Label      string `json:"label"`
	Text       string `json:"text"`
}

// HasChoice reports whether the question carries a choice with the given label.
func (q Question) HasChoice(label string) bool {
	for _, c := range q.Choices {
		if c.Label == label {
			return true
		}
	}
	return false
}

// QuestionCandidate is a question as seen by the selector: its topic, tier and
// the requesting user's attempt history for it.
type QuestionCandidate struct {
	QuestionID      string         `json:"questionId"`
	TopicKey        string         `json:"topicKey"`
	Difficulty      DifficultyTier `json:"difficulty"`
	AttemptCount    int            `json:"attemptCount"`
	LastAttemptedAt *time.Time     `json:"lastAttemptedAt,omitempty"`
}

// Attempted reports whether the user has answered this question before.
func (c QuestionCandidate) Attempted() bool {
	return c.AttemptCount > 0
}

// AnswerKey is the minimal question view needed to score an answer.
type AnswerKey struct {
	QuestionID    string
	TopicKey      string
	CorrectAnswer string
}
