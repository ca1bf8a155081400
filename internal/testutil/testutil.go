package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/certbloom/certbloom/internal/db"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens an in-memory SQLite database with the embedded schema applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), db.SQLite, "file::memory:")
	require.NoError(t, err)
	return conn
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Fixture ids created by Seed.
const (
	CertificationID = "cert-ec6"
	DomainMath      = "dom-math"
	DomainReading   = "dom-reading"
	ConceptFraction = "con-fractions"
	ConceptGeometry = "con-geometry"
	ConceptPhonics  = "con-phonics"
	UserID          = "user-1"
)

// Seed inserts one certification with two domains, three concepts, a user,
// content items and n questions per concept. Question ids are
// "<concept>-q<i>" with correct answer "A".
func Seed(t *testing.T, conn *db.DB, n int) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	exec := func(query string, args ...any) {
		t.Helper()
		q, err := conn.Placeholder().ReplacePlaceholders(query)
		require.NoError(t, err)
		_, err = conn.ExecContext(ctx, q, args...)
		require.NoError(t, err, query)
	}

	exec(`INSERT INTO certifications (id, code, name, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		CertificationID, "391", "Core Subjects EC-6", "", now)
	exec(`INSERT INTO domains (id, certification_id, code, name, weight, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		DomainMath, CertificationID, "902", "Mathematics", 0.25, now)
	exec(`INSERT INTO domains (id, certification_id, code, name, weight, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		DomainReading, CertificationID, "901", "English Language Arts and Reading", 0.25, now)
	for _, c := range []struct{ id, domain, name string }{
		{ConceptFraction, DomainMath, "Fractions"},
		{ConceptGeometry, DomainMath, "Geometry"},
		{ConceptPhonics, DomainReading, "Phonics"},
	} {
		exec(`INSERT INTO concepts (id, domain_id, name, description, created_at) VALUES (?, ?, ?, ?, ?)`,
			c.id, c.domain, c.name, "", now)
	}
	for i := 0; i < 4; i++ {
		exec(`INSERT INTO content_items (id, concept_id, kind, title, body, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			fmt.Sprintf("item-%d", i), ConceptFraction, models.ContentKindPractice, fmt.Sprintf("Fractions practice %d", i), "", now)
	}
	exec(`INSERT INTO users (id, display_name, created_at) VALUES (?, ?, ?)`, UserID, "Test Learner", now)

	tiers := []models.DifficultyTier{models.DifficultyFoundation, models.DifficultyApplication, models.DifficultyAdvanced}
	for _, concept := range []string{ConceptFraction, ConceptGeometry, ConceptPhonics} {
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("%s-q%d", concept, i)
			exec(`INSERT INTO questions (id, certification_id, concept_id, question_text, question_type, difficulty, cognitive_level, correct_answer, explanation, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, CertificationID, concept, "Question "+id, models.QuestionTypeMultipleChoice, string(tiers[i%3]), "", "A", "", now, now)
			exec(`INSERT INTO answer_choices (question_id, label, text) VALUES (?, ?, ?)`, id, "A", "right")
			exec(`INSERT INTO answer_choices (question_id, label, text) VALUES (?, ?, ?)`, id, "B", "wrong")
		}
	}
}

// QuestionID returns the id Seed gives the i-th question of concept.
func QuestionID(concept string, i int) string {
	return fmt.Sprintf("%s-q%d", concept, i)
}
