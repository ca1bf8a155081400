// Package postgres holds Postgres-only data access: the adaptive ranking
// stored functions shipped with the schema.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/selection"
	"github.com/lib/pq"
)

// ErrRankerUnavailable means the ranking function cannot be used at all, as
// opposed to a failed call.
var ErrRankerUnavailable = errors.New("adaptive ranking function unavailable")

const candidatesQuery = `SELECT question_id, topic_key, difficulty, mastery, attempt_count, last_attempted_at FROM get_adaptive_candidates($1, $2, $3, $4)`

// ProcedureRanker reads pre-trimmed candidates from get_adaptive_candidates
// and plans them with selection.Plan, so band shares and the mood mix match
// the in-process ranker.
type ProcedureRanker struct {
	db     *sql.DB
	policy selection.Policy
}

func NewProcedureRanker(db *sql.DB, policy selection.Policy) *ProcedureRanker {
	return &ProcedureRanker{db: db, policy: policy}
}

func (r *ProcedureRanker) Rank(ctx context.Context, req selection.RankRequest) ([]selection.Ranked, error) {
	log := logger.FromContext(ctx).WithPrefix("pg_ranker")
	log.Debug("calling get_adaptive_candidates: user_id=%s subject_area=%s limit=%d", req.UserID, req.SubjectArea, req.SessionLength)

	rows, err := r.db.QueryContext(ctx, candidatesQuery, req.UserID, req.SubjectArea, req.SessionLength, req.Mood.IncludeChallenge)
	if err != nil {
		err = classify(err)
		log.WithError(err).Warn("ranking call failed")
		return nil, err
	}
	defer rows.Close()

	candidates := []models.QuestionCandidate{}
	var progress []models.ProgressRecord
	seen := map[string]bool{}
	for rows.Next() {
		var c models.QuestionCandidate
		var difficulty string
		var mastery sql.NullFloat64
		var last sql.NullTime
		if err := rows.Scan(&c.QuestionID, &c.TopicKey, &difficulty, &mastery, &c.AttemptCount, &last); err != nil {
			return nil, classify(err)
		}
		c.Difficulty = models.DifficultyTier(difficulty)
		if last.Valid {
			at := last.Time
			c.LastAttemptedAt = &at
		}
		candidates = append(candidates, c)

		if mastery.Valid && !seen[c.TopicKey] {
			seen[c.TopicKey] = true
			progress = append(progress, models.ProgressRecord{UserID: req.UserID, TopicKey: c.TopicKey, Mastery: mastery.Float64})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	out := selection.Plan(r.policy, req, progress, candidates)
	log.Debug("ranked %d of %d candidates", len(out), len(candidates))
	return out, nil
}

// classify separates a missing or forbidden function from other failures.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "42883", "42P01", "42501": // undefined_function, undefined_table, insufficient_privilege
		return fmt.Errorf("%w: %s", ErrRankerUnavailable, pqErr.Message)
	}
	return fmt.Errorf("get_adaptive_candidates failed (%s): %w", pqErr.Code.Name(), err)
}
