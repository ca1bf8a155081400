package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/certbloom/certbloom/internal/db"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
)

var resultColumns = []string{
	"session_id", "user_id", "concept_id", "question_ids", "answers",
	"correct_count", "total_count", "score_percentage", "completed_at",
}

type sessionRepository struct {
	db *db.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(conn *db.DB) repository.SessionRepository {
	return &sessionRepository{db: conn}
}

func (r *sessionRepository) Create(ctx context.Context, s models.PracticeSession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("creating session: id=%s user_id=%s questions=%d", s.ID, s.UserID, len(s.QuestionIDs))

	ids, err := encodeList(s.QuestionIDs)
	if err != nil {
		return err
	}
	query, args, err := r.db.Builder().
		Insert("practice_sessions").
		Columns("id", "user_id", "subject_area", "mood", "is_adaptive", "question_ids", "status", "created_at").
		Values(s.ID, s.UserID, s.SubjectArea, s.Mood, s.IsAdaptive, ids, string(s.Status), s.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create session: %v", err)
		return err
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.PracticeSession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%s", id)

	query, args, err := r.db.Builder().
		Select("id", "user_id", "subject_area", "mood", "is_adaptive", "question_ids", "status", "created_at", "completed_at").
		From("practice_sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var s models.PracticeSession
	var ids string
	var completed sql.NullTime
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.UserID, &s.SubjectArea, &s.Mood, &s.IsAdaptive,
		&ids, &s.Status, &s.CreatedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	if s.QuestionIDs, err = decodeList(ids); err != nil {
		return nil, fmt.Errorf("%w: session %q: %v", models.ErrMalformedRow, id, err)
	}
	s.CompletedAt = timePtr(completed)
	if err := s.Validate(); err != nil {
		log.Error("invalid session row: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Complete(ctx context.Context, result models.SessionResult, attempts []models.Attempt) ([]models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("completing session: id=%s attempts=%d", result.SessionID, len(attempts))

	if err := result.Validate(); err != nil {
		return nil, err
	}
	qids, err := encodeList(result.QuestionIDs)
	if err != nil {
		return nil, err
	}
	answers, err := encodeList(result.Answers)
	if err != nil {
		return nil, err
	}

	written := make([]models.Attempt, 0, len(attempts))
	err = r.db.Tx(ctx, func(tx *sql.Tx) error {
		query, args, err := r.db.Builder().
			Update("practice_sessions").
			Set("status", string(models.SessionCompleted)).
			Set("completed_at", result.CompletedAt.UTC()).
			Where(squirrel.Eq{"id": result.SessionID, "status": string(models.SessionActive)}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to close session: %v", err)
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return repository.ErrSessionCompleted
		}

		for _, a := range attempts {
			stored, err := r.insertAttempt(ctx, tx, a)
			if err != nil {
				log.Error("failed to insert attempt for question %s: %v", a.QuestionID, err)
				return err
			}
			written = append(written, stored)
		}

		query, args, err = r.db.Builder().
			Insert("session_results").
			Columns(resultColumns...).
			Values(result.SessionID, result.UserID, result.ConceptID, qids, answers,
				result.CorrectCount, result.TotalCount, result.ScorePercentage, result.CompletedAt.UTC()).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to insert session result: %v", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug("session %s completed", result.SessionID)
	return written, nil
}

// insertAttempt appends an attempt with the next ordinal for its user and question.
func (r *sessionRepository) insertAttempt(ctx context.Context, tx *sql.Tx, a models.Attempt) (models.Attempt, error) {
	query, args, err := r.db.Builder().
		Select("COALESCE(MAX(attempt_number), 0)").
		From("attempts").
		Where(squirrel.Eq{"user_id": a.UserID, "question_id": a.QuestionID}).
		ToSql()
	if err != nil {
		return a, err
	}
	var last int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return a, err
	}
	a.AttemptNumber = last + 1

	query, args, err = r.db.Builder().
		Insert("attempts").
		Columns("user_id", "question_id", "session_id", "submitted_answer", "is_correct",
			"time_spent_seconds", "attempt_number", "confidence", "attempted_at").
		Values(a.UserID, a.QuestionID, a.SessionID, a.SubmittedAnswer, a.IsCorrect,
			a.TimeSpentSeconds, a.AttemptNumber, nullInt(a.Confidence), a.AttemptedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return a, err
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&a.ID); err != nil {
		return a, err
	}
	return a, nil
}

func scanResult(row rowScanner) (models.SessionResult, error) {
	var res models.SessionResult
	var qids, answers string
	if err := row.Scan(&res.SessionID, &res.UserID, &res.ConceptID, &qids, &answers,
		&res.CorrectCount, &res.TotalCount, &res.ScorePercentage, &res.CompletedAt); err != nil {
		return res, err
	}
	var err error
	if res.QuestionIDs, err = decodeList(qids); err != nil {
		return res, fmt.Errorf("%w: session_result %q: %v", models.ErrMalformedRow, res.SessionID, err)
	}
	if res.Answers, err = decodeList(answers); err != nil {
		return res, fmt.Errorf("%w: session_result %q: %v", models.ErrMalformedRow, res.SessionID, err)
	}
	return res, res.Validate()
}

func (r *sessionRepository) GetResult(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session result: session_id=%s", sessionID)

	query, args, err := r.db.Builder().
		Select(resultColumns...).
		From("session_results").
		Where(squirrel.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	res, err := scanResult(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session result: %v", err)
		return nil, err
	}
	return &res, nil
}

func (r *sessionRepository) RecentResults(ctx context.Context, userID string, limit int) ([]models.SessionResult, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing recent results: user_id=%s limit=%d", userID, limit)

	if limit <= 0 {
		limit = 10
	}
	query, args, err := r.db.Builder().
		Select(resultColumns...).
		From("session_results").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("completed_at DESC", "session_id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list results: %v", err)
		return nil, err
	}
	defer rows.Close()

	results := []models.SessionResult{}
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			log.Error("failed to read result row: %v", err)
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *sessionRepository) ListAttempts(ctx context.Context, userID, questionID string) ([]models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing attempts: user_id=%s question_id=%s", userID, questionID)

	query, args, err := r.db.Builder().
		Select("id", "user_id", "question_id", "session_id", "submitted_answer", "is_correct",
			"time_spent_seconds", "attempt_number", "confidence", "attempted_at").
		From("attempts").
		Where(squirrel.Eq{"user_id": userID, "question_id": questionID}).
		OrderBy("attempt_number ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list attempts: %v", err)
		return nil, err
	}
	defer rows.Close()

	attempts := []models.Attempt{}
	for rows.Next() {
		var a models.Attempt
		var confidence sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.SessionID, &a.SubmittedAnswer, &a.IsCorrect,
			&a.TimeSpentSeconds, &a.AttemptNumber, &confidence, &a.AttemptedAt); err != nil {
			log.Error("failed to scan attempt: %v", err)
			return nil, err
		}
		if confidence.Valid {
			c := int(confidence.Int64)
			a.Confidence = &c
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
