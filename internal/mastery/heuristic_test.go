package mastery_test

import (
	"testing"
	"time"

	"github.com/certbloom/certbloom/internal/mastery"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRichness(t *testing.T) {
	tests := []struct {
		count int
		want  mastery.Richness
	}{
		{count: -1, want: mastery.Light},
		{count: 0, want: mastery.Light},
		{count: 1, want: mastery.Light},
		{count: 2, want: mastery.Medium},
		{count: 3, want: mastery.Medium},
		{count: 4, want: mastery.Rich},
		{count: 40, want: mastery.Rich},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mastery.ClassifyRichness(tt.count), "count=%d", tt.count)
	}
}

func TestNext_FirstExposureByTier(t *testing.T) {
	p := mastery.DefaultPolicy()

	assert.InDelta(t, 0.70, p.Next(0, 4, true, true), 1e-9, "rich")
	assert.InDelta(t, 0.50, p.Next(0, 3, true, true), 1e-9, "medium")
	assert.InDelta(t, 0.40, p.Next(0, 1, true, true), 1e-9, "light")
	assert.InDelta(t, 0.40, p.Next(0, 0, true, true), 1e-9, "unknown richness is light")
}

func TestNext_SubsequentExposureCapsAtOne(t *testing.T) {
	p := mastery.DefaultPolicy()

	assert.InDelta(t, 1.00, p.Next(0.70, 4, true, false), 1e-9)
	assert.InDelta(t, 0.80, p.Next(0.50, 2, true, false), 1e-9)
	assert.InDelta(t, 1.00, p.Next(0.95, 4, true, false), 1e-9)
}

func TestNext_IncorrectNeverChangesMastery(t *testing.T) {
	p := mastery.DefaultPolicy()

	for _, m := range []float64{0, 0.35, 0.7, 0.8, 1} {
		assert.Equal(t, m, p.Next(m, 4, false, true))
		assert.Equal(t, m, p.Next(m, 4, false, false))
	}
}

func TestStageFor(t *testing.T) {
	p := mastery.DefaultPolicy()

	assert.Equal(t, models.StageExploring, p.StageFor(0))
	assert.Equal(t, models.StageExploring, p.StageFor(0.39))
	assert.Equal(t, models.StageDeveloping, p.StageFor(0.40))
	assert.Equal(t, models.StageDeveloping, p.StageFor(0.69))
	assert.Equal(t, models.StageProficient, p.StageFor(0.70))
	assert.Equal(t, models.StageMastered, p.StageFor(0.80))
	assert.Equal(t, models.StageMastered, p.StageFor(1))
}

func TestNeedsReview(t *testing.T) {
	p := mastery.DefaultPolicy()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	stale := now.Add(-15 * 24 * time.Hour)

	assert.True(t, p.NeedsReview(0.5, &recent, now), "weak topics always need review")
	assert.False(t, p.NeedsReview(0.9, &recent, now))
	assert.True(t, p.NeedsReview(0.9, &stale, now), "stale topics need review")
	assert.True(t, p.NeedsReview(0.9, nil, now))
}

// A rich topic answered correctly twice goes 0 -> 0.70 -> 1.00.
func TestApply_RichTopicTwoSessions(t *testing.T) {
	p := mastery.DefaultPolicy()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	update := models.MasteryUpdate{UserID: "u1", TopicKey: "c1", ContentItemCount: 5, WasCorrect: true}

	first, change := p.Apply(nil, update, now)
	assert.InDelta(t, 0.70, first.Mastery, 1e-9)
	assert.Equal(t, 1, first.Attempts)
	assert.Equal(t, models.StageProficient, first.Stage)
	assert.False(t, change.Mastered, "0.70 is below the mastered threshold")
	assert.Equal(t, 0.0, change.Previous)
	require.NotNil(t, first.LastPracticedAt)
	assert.Equal(t, now, *first.LastPracticedAt)
	assert.Equal(t, now, first.CreatedAt)

	later := now.Add(48 * time.Hour)
	second, change := p.Apply(&first, update, later)
	assert.InDelta(t, 1.00, second.Mastery, 1e-9)
	assert.Equal(t, 2, second.Attempts)
	assert.Equal(t, models.StageMastered, second.Stage)
	assert.True(t, change.Mastered)
	assert.False(t, second.NeedsReview)
	assert.Equal(t, now, second.CreatedAt, "creation time is preserved")
	assert.Equal(t, later, second.UpdatedAt)
}

func TestApply_IncorrectStillCountsAttempt(t *testing.T) {
	p := mastery.DefaultPolicy()
	now := time.Now()
	existing := &models.ProgressRecord{UserID: "u1", TopicKey: "c1", Mastery: 0.5, Attempts: 3, Stage: models.StageDeveloping}

	rec, change := p.Apply(existing, models.MasteryUpdate{UserID: "u1", TopicKey: "c1", ContentItemCount: 2}, now)

	assert.Equal(t, 0.5, rec.Mastery)
	assert.Equal(t, 4, rec.Attempts)
	assert.True(t, rec.NeedsReview)
	assert.Equal(t, change.Previous, change.Current)
	assert.Equal(t, 3, existing.Attempts, "the input record is not mutated")
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, mastery.DefaultPolicy().Validate())

	p := mastery.DefaultPolicy()
	p.FirstExposure = map[mastery.Richness]float64{mastery.Rich: 0.3, mastery.Medium: 0.5, mastery.Light: 0.4}
	assert.Error(t, p.Validate())

	p = mastery.DefaultPolicy()
	p.WeakThreshold = 0.9
	assert.Error(t, p.Validate())
}
