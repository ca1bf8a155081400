package selection

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/mood"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(topic string, n int, tier models.DifficultyTier) []models.QuestionCandidate {
	out := make([]models.QuestionCandidate, n)
	for i := range out {
		out[i] = models.QuestionCandidate{
			QuestionID: fmt.Sprintf("%s-%02d", topic, i),
			TopicKey:   topic,
			Difficulty: tier,
		}
	}
	return out
}

func record(topic string, m float64) models.ProgressRecord {
	return models.ProgressRecord{UserID: "u1", TopicKey: topic, Mastery: m, Attempts: 1}
}

func reasons(r []Ranked) map[Reason]int {
	out := map[Reason]int{}
	for _, q := range r {
		out[q.Reason]++
	}
	return out
}

func TestApportion(t *testing.T) {
	assert.Equal(t, []int{6, 3, 1}, apportion(10, []int{60, 25, 15}))
	assert.Equal(t, []int{4, 1, 1}, apportion(6, []int{60, 25, 15}))
	assert.Equal(t, []int{2, 2, 1}, apportion(5, []int{40, 40, 20}))
	assert.Equal(t, []int{0, 0, 0}, apportion(0, []int{60, 25, 15}))
	assert.Equal(t, []int{0, 0}, apportion(3, []int{0, 0}))
}

func TestPlan_FocusWeakAreasShares(t *testing.T) {
	var pool []models.QuestionCandidate
	pool = append(pool, candidates("weak", 10, models.DifficultyFoundation)...)
	pool = append(pool, candidates("mid", 10, models.DifficultyFoundation)...)
	pool = append(pool, candidates("strong", 10, models.DifficultyFoundation)...)
	progress := []models.ProgressRecord{record("mid", 0.75), record("strong", 0.9)}

	out := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 10, FocusWeakAreas: true}, progress, pool)

	require.Len(t, out, 10)
	got := reasons(out)
	assert.Equal(t, 6, got[ReasonWeakArea])
	assert.Equal(t, 3, got[ReasonReinforcement])
	assert.Equal(t, 1, got[ReasonConfidenceBuilder])
}

func TestPlan_NoWeakTopicsStillFillsSession(t *testing.T) {
	pool := append(candidates("mid", 5, models.DifficultyFoundation), candidates("strong", 5, models.DifficultyFoundation)...)
	progress := []models.ProgressRecord{record("mid", 0.75), record("strong", 0.9)}

	out := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 6, FocusWeakAreas: true}, progress, pool)

	require.Len(t, out, 6)
	got := reasons(out)
	assert.Zero(t, got[ReasonWeakArea])
	assert.Equal(t, 5, got[ReasonReinforcement], "the empty weak band spills into mid first")
	assert.Equal(t, 1, got[ReasonConfidenceBuilder])
}

func TestPlan_PrefersUnattemptedThenLeastRecent(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)
	pool := []models.QuestionCandidate{
		{QuestionID: "recent", TopicKey: "t", Difficulty: models.DifficultyFoundation, AttemptCount: 1, LastAttemptedAt: &newer},
		{QuestionID: "old", TopicKey: "t", Difficulty: models.DifficultyFoundation, AttemptCount: 2, LastAttemptedAt: &older},
		{QuestionID: "fresh", TopicKey: "t", Difficulty: models.DifficultyFoundation},
	}

	out := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 3}, []models.ProgressRecord{record("t", 0.5)}, pool)

	assert.Equal(t, []string{"fresh", "old", "recent"}, Selection{Questions: out}.IDs())
}

func TestPlan_InterleavesTopicsWeakestFirst(t *testing.T) {
	pool := append(candidates("b", 2, models.DifficultyFoundation), candidates("a", 2, models.DifficultyFoundation)...)
	progress := []models.ProgressRecord{record("a", 0.1), record("b", 0.3)}

	out := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 4}, progress, pool)

	assert.Equal(t, []string{"a-00", "b-00", "a-01", "b-01"}, Selection{Questions: out}.IDs())
}

func TestPlan_MoodMix(t *testing.T) {
	now := time.Now()
	var pool []models.QuestionCandidate
	for i := 0; i < 5; i++ {
		pool = append(pool, models.QuestionCandidate{
			QuestionID: fmt.Sprintf("review-%d", i), TopicKey: "t", Difficulty: models.DifficultyFoundation,
			AttemptCount: 1, LastAttemptedAt: &now,
		})
	}
	pool = append(pool, candidates("new", 5, models.DifficultyFoundation)...)
	pool = append(pool, candidates("app", 5, models.DifficultyApplication)...)
	for i := 5; i < len(pool); i++ {
		pool[i].TopicKey = "t"
	}
	calm := mood.MustDefault().Resolve("calm")

	out := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 5, Mood: calm}, nil, pool)

	require.Len(t, out, 5)
	kinds := map[string]int{}
	for _, id := range (Selection{Questions: out}).IDs() {
		kinds[strings.SplitN(id, "-", 2)[0]]++
	}
	assert.Equal(t, map[string]int{"review": 2, "new": 2, "app": 1}, kinds)
}

func TestPlan_MoodMixKeepsReviewToItsShare(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var pool []models.QuestionCandidate
	for i, id := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Hour)
		pool = append(pool, models.QuestionCandidate{
			QuestionID: id, TopicKey: "t", Difficulty: models.DifficultyFoundation,
			AttemptCount: 1, LastAttemptedAt: &at,
		})
	}
	for _, id := range []string{"d", "e", "f"} {
		pool = append(pool, models.QuestionCandidate{QuestionID: id, TopicKey: "t", Difficulty: models.DifficultyFoundation})
	}
	calm := mood.MustDefault().Resolve("calm")

	out := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 3, Mood: calm}, nil, pool)

	// calm targets one review, one new and one application question. With no
	// application questions left, the spare slot goes to an unattempted one.
	assert.Equal(t, []string{"d", "a", "e"}, Selection{Questions: out}.IDs())
}

func TestPlan_ReviewFillsWhenUnattemptedRunOut(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var pool []models.QuestionCandidate
	for i, id := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Hour)
		pool = append(pool, models.QuestionCandidate{
			QuestionID: id, TopicKey: "t", Difficulty: models.DifficultyFoundation,
			AttemptCount: 1, LastAttemptedAt: &at,
		})
	}
	pool = append(pool, models.QuestionCandidate{QuestionID: "d", TopicKey: "t", Difficulty: models.DifficultyFoundation})
	calm := mood.MustDefault().Resolve("calm")

	out := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 3, Mood: calm}, nil, pool)

	assert.Equal(t, []string{"d", "a", "b"}, Selection{Questions: out}.IDs())
}

func TestPlan_ChallengeOrdering(t *testing.T) {
	pool := []models.QuestionCandidate{
		{QuestionID: "a-adv", TopicKey: "t", Difficulty: models.DifficultyAdvanced},
		{QuestionID: "b-found", TopicKey: "t", Difficulty: models.DifficultyFoundation},
	}

	calm := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 1}, nil, pool)
	assert.Equal(t, "b-found", calm[0].QuestionID)

	focused := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 1, Mood: mood.Setting{Config: mood.Config{IncludeChallenge: true}}}, nil, pool)
	assert.Equal(t, "a-adv", focused[0].QuestionID)
}

func TestPlan_PriorityScore(t *testing.T) {
	now := time.Now()
	pool := []models.QuestionCandidate{
		{QuestionID: "never", TopicKey: "unseen", Difficulty: models.DifficultyFoundation},
		{QuestionID: "seen", TopicKey: "mid", Difficulty: models.DifficultyFoundation, AttemptCount: 1, LastAttemptedAt: &now},
	}

	out := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 2}, []models.ProgressRecord{record("mid", 0.75)}, pool)

	require.Len(t, out, 2)
	assert.Equal(t, "never", out[0].QuestionID)
	assert.Equal(t, 1.0, out[0].PriorityScore)
	assert.Equal(t, ReasonWeakArea, out[0].Reason, "unpracticed topics are weak")
	assert.InDelta(t, 0.25, out[1].PriorityScore, 1e-9)
	assert.Equal(t, ReasonReinforcement, out[1].Reason)
}

func TestPlan_FewerCandidatesThanLength(t *testing.T) {
	out := Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 20, FocusWeakAreas: true}, nil, candidates("t", 3, models.DifficultyFoundation))
	assert.Len(t, out, 3)

	assert.Empty(t, Plan(DefaultPolicy(), RankRequest{UserID: "u1", SessionLength: 5}, nil, nil))
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.MidShare = 30
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.WeakBelow = 0.9
	assert.Error(t, p.Validate())
}
