package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/certbloom/certbloom/internal/db"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
)

var questionColumns = []string{
	"q.id", "q.certification_id", "q.concept_id", "c.domain_id", "q.question_text", "q.question_type",
	"q.difficulty", "q.cognitive_level", "q.correct_answer", "q.explanation", "q.created_at", "q.updated_at",
}

type questionRepository struct {
	db *db.DB
}

// NewQuestionRepository creates a new QuestionRepository implementation
func NewQuestionRepository(conn *db.DB) repository.QuestionRepository {
	return &questionRepository{db: conn}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (models.Question, error) {
	var q models.Question
	var conceptID, domainID sql.NullString
	err := row.Scan(&q.ID, &q.CertificationID, &conceptID, &domainID, &q.QuestionText, &q.QuestionType,
		&q.Difficulty, &q.CognitiveLevel, &q.CorrectAnswer, &q.Explanation, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return q, err
	}
	q.ConceptID = conceptID.String
	q.DomainID = domainID.String
	return q, nil
}

func (r *questionRepository) selectQuestions() squirrel.SelectBuilder {
	return r.db.Builder().
		Select(questionColumns...).
		From("questions q").
		LeftJoin("concepts c ON c.id = q.concept_id")
}

func (r *questionRepository) Get(ctx context.Context, id string) (*models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("getting question: id=%s", id)

	query, args, err := r.selectQuestions().Where(squirrel.Eq{"q.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("question not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get question: %v", err)
		return nil, err
	}
	if err := q.Validate(); err != nil {
		log.Error("invalid question row: %v", err)
		return nil, err
	}

	choices, err := r.choicesFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	q.Choices = choices[id]
	return &q, nil
}

func (r *questionRepository) ListByConcept(ctx context.Context, conceptID string, limit, offset int) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("listing questions: concept_id=%s limit=%d offset=%d", conceptID, limit, offset)

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query, args, err := r.selectQuestions().
		Where(squirrel.Eq{"q.concept_id": conceptID}).
		OrderBy("q.created_at ASC", "q.id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list questions: %v", err)
		return nil, err
	}
	defer rows.Close()

	questions := []models.Question{}
	var ids []string
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			log.Error("failed to scan question row: %v", err)
			return nil, err
		}
		if err := q.Validate(); err != nil {
			log.Error("invalid question row: %v", err)
			return nil, err
		}
		questions = append(questions, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return questions, nil
	}

	choices, err := r.choicesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Choices = choices[questions[i].ID]
	}
	return questions, nil
}

func (r *questionRepository) choicesFor(ctx context.Context, ids []string) (map[string][]models.AnswerChoice, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")

	query, args, err := r.db.Builder().
		Select("question_id", "label", "text").
		From("answer_choices").
		Where(squirrel.Eq{"question_id": ids}).
		OrderBy("question_id ASC", "label ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to load answer choices: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]models.AnswerChoice, len(ids))
	for rows.Next() {
		var c models.AnswerChoice
		if err := rows.Scan(&c.QuestionID, &c.Label, &c.Text); err != nil {
			log.Error("failed to scan answer choice: %v", err)
			return nil, err
		}
		out[c.QuestionID] = append(out[c.QuestionID], c)
	}
	return out, rows.Err()
}

func (r *questionRepository) InsertBatch(ctx context.Context, questions []models.Question) error {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("inserting %d questions", len(questions))

	if len(questions) == 0 {
		return nil
	}
	return r.db.Tx(ctx, func(tx *sql.Tx) error {
		for _, q := range questions {
			query, args, err := r.db.Builder().
				Insert("questions").
				Columns("id", "certification_id", "concept_id", "question_text", "question_type", "difficulty",
					"cognitive_level", "correct_answer", "explanation", "created_at", "updated_at").
				Values(q.ID, q.CertificationID, nullString(q.ConceptID), q.QuestionText, q.QuestionType, string(q.Difficulty),
					q.CognitiveLevel, q.CorrectAnswer, q.Explanation, q.CreatedAt.UTC(), q.UpdatedAt.UTC()).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				log.Error("failed to insert question %s: %v", q.ID, err)
				return fmt.Errorf("insert question %s: %w", q.ID, err)
			}

			if len(q.Choices) == 0 {
				continue
			}
			ins := r.db.Builder().Insert("answer_choices").Columns("question_id", "label", "text")
			for _, c := range q.Choices {
				ins = ins.Values(q.ID, c.Label, c.Text)
			}
			query, args, err = ins.ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				log.Error("failed to insert choices for question %s: %v", q.ID, err)
				return fmt.Errorf("insert choices for %s: %w", q.ID, err)
			}
		}
		log.Debug("inserted %d questions", len(questions))
		return nil
	})
}

func (r *questionRepository) UpdateConcept(ctx context.Context, id, conceptID string, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("recategorizing question: id=%s concept_id=%s", id, conceptID)

	query, args, err := r.db.Builder().
		Update("questions").
		Set("concept_id", nullString(conceptID)).
		Set("updated_at", at.UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to recategorize question: %v", err)
		return err
	}
	return nil
}

func (r *questionRepository) UpdateCorrectAnswer(ctx context.Context, id, answer string, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("updating answer key: id=%s", id)

	query, args, err := r.db.Builder().
		Update("questions").
		Set("correct_answer", answer).
		Set("updated_at", at.UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to update answer key: %v", err)
		return err
	}
	return nil
}

func (r *questionRepository) AnswerKeys(ctx context.Context, ids []string) (map[string]models.AnswerKey, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("loading answer keys for %d questions", len(ids))

	keys := make(map[string]models.AnswerKey, len(ids))
	if len(ids) == 0 {
		return keys, nil
	}
	query, args, err := r.db.Builder().
		Select("id", "concept_id", "correct_answer").
		From("questions").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to load answer keys: %v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var k models.AnswerKey
		var conceptID sql.NullString
		if err := rows.Scan(&k.QuestionID, &conceptID, &k.CorrectAnswer); err != nil {
			log.Error("failed to scan answer key: %v", err)
			return nil, err
		}
		k.TopicKey = conceptID.String
		keys[k.QuestionID] = k
	}
	return keys, rows.Err()
}

// ListCandidates returns the categorized questions of a subject area with the
// user's attempt history for each.
func (r *questionRepository) ListCandidates(ctx context.Context, userID, subjectArea string) ([]models.QuestionCandidate, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("listing candidates: user_id=%s subject_area=%s", userID, subjectArea)

	query, args, err := r.db.Builder().
		Select("q.id", "q.concept_id", "q.difficulty").
		From("questions q").
		Join("concepts c ON c.id = q.concept_id").
		Where(subjectFilter(subjectArea)).
		OrderBy("q.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list candidates: %v", err)
		return nil, err
	}
	defer rows.Close()

	candidates := []models.QuestionCandidate{}
	index := map[string]int{}
	for rows.Next() {
		var c models.QuestionCandidate
		if err := rows.Scan(&c.QuestionID, &c.TopicKey, &c.Difficulty); err != nil {
			log.Error("failed to scan candidate: %v", err)
			return nil, err
		}
		index[c.QuestionID] = len(candidates)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	// Attempt history is folded in Go: aggregate columns lose their declared
	// type under SQLite and would not scan into time.Time.
	query, args, err = r.db.Builder().
		Select("a.question_id", "a.attempted_at").
		From("attempts a").
		Join("questions q ON q.id = a.question_id").
		Join("concepts c ON c.id = q.concept_id").
		Where(squirrel.Eq{"a.user_id": userID}).
		Where(subjectFilter(subjectArea)).
		ToSql()
	if err != nil {
		return nil, err
	}
	attempts, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to load attempt history: %v", err)
		return nil, err
	}
	defer attempts.Close()

	for attempts.Next() {
		var qid string
		var at time.Time
		if err := attempts.Scan(&qid, &at); err != nil {
			log.Error("failed to scan attempt history: %v", err)
			return nil, err
		}
		i, ok := index[qid]
		if !ok {
			continue
		}
		c := &candidates[i]
		c.AttemptCount++
		if c.LastAttemptedAt == nil || at.After(*c.LastAttemptedAt) {
			t := at
			c.LastAttemptedAt = &t
		}
	}
	log.Debug("found %d candidates", len(candidates))
	return candidates, attempts.Err()
}

func (r *questionRepository) RandomQuestionIDs(ctx context.Context, subjectArea string, limit int) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("random pull: subject_area=%s limit=%d", subjectArea, limit)

	query, args, err := r.db.Builder().
		Select("q.id").
		From("questions q").
		LeftJoin("concepts c ON c.id = q.concept_id").
		Where(subjectFilter(subjectArea)).
		OrderBy("RANDOM()").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed random pull: %v", err)
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
