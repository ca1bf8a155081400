package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/certbloom/certbloom/internal/db"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
)

var progressColumns = []string{
	"user_id", "topic_key", "mastery", "attempts", "last_practiced_at",
	"needs_review", "stage", "created_at", "updated_at",
}

type progressRepository struct {
	db *db.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(conn *db.DB) repository.ProgressRepository {
	return &progressRepository{db: conn}
}

func scanProgress(row rowScanner) (models.ProgressRecord, error) {
	var p models.ProgressRecord
	var last sql.NullTime
	if err := row.Scan(&p.UserID, &p.TopicKey, &p.Mastery, &p.Attempts, &last,
		&p.NeedsReview, &p.Stage, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	p.LastPracticedAt = timePtr(last)
	return p, p.Validate()
}

func (r *progressRepository) Get(ctx context.Context, userID, topicKey string) (*models.ProgressRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("getting progress: user_id=%s topic=%s", userID, topicKey)

	query, args, err := r.db.Builder().
		Select(progressColumns...).
		From("progress_records").
		Where(squirrel.Eq{"user_id": userID, "topic_key": topicKey}).
		ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no progress yet: user_id=%s topic=%s", userID, topicKey)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *progressRepository) ListByUser(ctx context.Context, userID string) ([]models.ProgressRecord, error) {
	return r.list(ctx, squirrel.Eq{"user_id": userID})
}

// ListForSubject returns the user's records for the concepts under a domain or
// certification.
func (r *progressRepository) ListForSubject(ctx context.Context, userID, subjectArea string) ([]models.ProgressRecord, error) {
	concepts := r.db.Builder().
		Select("c.id").
		From("concepts c").
		Join("domains d ON d.id = c.domain_id").
		Where(squirrel.Or{squirrel.Eq{"d.id": subjectArea}, squirrel.Eq{"d.certification_id": subjectArea}})
	sub, subArgs, err := concepts.PlaceholderFormat(squirrel.Question).ToSql()
	if err != nil {
		return nil, err
	}
	return r.list(ctx, squirrel.And{
		squirrel.Eq{"user_id": userID},
		squirrel.Expr("topic_key IN ("+sub+")", subArgs...),
	})
}

func (r *progressRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]models.ProgressRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	query, args, err := r.db.Builder().
		Select(progressColumns...).
		From("progress_records").
		Where(where).
		OrderBy("mastery ASC", "topic_key ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	log.Debug("listing progress records")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list progress: %v", err)
		return nil, err
	}
	defer rows.Close()

	records := []models.ProgressRecord{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			log.Error("failed to read progress row: %v", err)
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

// Upsert writes rec in place. Concurrent writers for the same key are
// last-writer-wins.
func (r *progressRepository) Upsert(ctx context.Context, rec models.ProgressRecord) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("upserting progress: user_id=%s topic=%s mastery=%.4f", rec.UserID, rec.TopicKey, rec.Mastery)

	if err := rec.Validate(); err != nil {
		return err
	}
	query, args, err := r.db.Builder().
		Insert("progress_records").
		Columns(progressColumns...).
		Values(rec.UserID, rec.TopicKey, rec.Mastery, rec.Attempts, nullTime(rec.LastPracticedAt),
			rec.NeedsReview, string(rec.Stage), rec.CreatedAt.UTC(), rec.UpdatedAt.UTC()).
		Suffix(`ON CONFLICT (user_id, topic_key) DO UPDATE SET
    mastery = excluded.mastery,
    attempts = excluded.attempts,
    last_practiced_at = excluded.last_practiced_at,
    needs_review = excluded.needs_review,
    stage = excluded.stage,
    updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert progress: %v", err)
		return err
	}
	return nil
}
