package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedRow marks a stored row that does not satisfy its record's invariants.
var ErrMalformedRow = errors.New("malformed row")

func malformed(kind, id, reason string) error {
	return fmt.Errorf("%w: %s %q: %s", ErrMalformedRow, kind, id, reason)
}

// Validate checks a question row read from the store.
func (q Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return malformed("question", q.ID, "missing id")
	}
	if strings.TrimSpace(q.QuestionText) == "" {
		return malformed("question", q.ID, "missing question text")
	}
	if !q.Difficulty.Valid() {
		return malformed("question", q.ID, fmt.Sprintf("unknown difficulty %q", q.Difficulty))
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return malformed("question", q.ID, "missing correct answer")
	}
	return nil
}

// Validate checks a progress row read from the store.
func (p ProgressRecord) Validate() error {
	id := p.UserID + "/" + p.TopicKey
	if p.UserID == "" || p.TopicKey == "" {
		return malformed("progress", id, "missing key")
	}
	if p.Mastery < 0 || p.Mastery > 1 {
		return malformed("progress", id, fmt.Sprintf("mastery %.3f outside [0,1]", p.Mastery))
	}
	if p.Attempts < 0 {
		return malformed("progress", id, "negative attempt counter")
	}
	if !p.Stage.Valid() {
		return malformed("progress", id, fmt.Sprintf("unknown stage %q", p.Stage))
	}
	return nil
}

// Validate checks a session result, either before insert or after a read.
func (r SessionResult) Validate() error {
	if r.SessionID == "" {
		return malformed("session_result", r.SessionID, "missing session id")
	}
	if len(r.QuestionIDs) != len(r.Answers) {
		return malformed("session_result", r.SessionID,
			fmt.Sprintf("%d questions but %d answers", len(r.QuestionIDs), len(r.Answers)))
	}
	if r.TotalCount != len(r.QuestionIDs) {
		return malformed("session_result", r.SessionID, "total does not match question count")
	}
	if r.CorrectCount < 0 || r.CorrectCount > r.TotalCount {
		return malformed("session_result", r.SessionID, "correct count out of range")
	}
	if r.ScorePercentage < 0 || r.ScorePercentage > 100 {
		return malformed("session_result", r.SessionID, "score out of range")
	}
	return nil
}

// Validate checks a practice session row read from the store.
func (s PracticeSession) Validate() error {
	if s.ID == "" || s.UserID == "" {
		return malformed("session", s.ID, "missing id or user")
	}
	switch s.Status {
	case SessionActive, SessionCompleted:
	default:
		return malformed("session", s.ID, fmt.Sprintf("unknown status %q", s.Status))
	}
	return nil
}
