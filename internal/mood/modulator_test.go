package mood_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/certbloom/certbloom/internal/mood"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_KnownMoods(t *testing.T) {
	m := mood.MustDefault()

	tired := m.Resolve("tired")
	assert.Equal(t, "tired", tired.Label)
	assert.False(t, tired.Fallback)
	assert.Equal(t, 60, tired.ReviewPct)
	assert.Equal(t, mood.Gentle, tired.Intensity)
	assert.True(t, tired.IncludeBreak)

	focused := m.Resolve("  FOCUSED ")
	assert.Equal(t, "focused", focused.Label)
	assert.True(t, focused.IncludeChallenge)
	assert.False(t, focused.IncludeBreak)
}

func TestResolve_UnknownFallsBackToDefault(t *testing.T) {
	m := mood.MustDefault()

	for _, label := range []string{"", "bored", "hangry"} {
		s := m.Resolve(label)
		assert.Equal(t, mood.Calm, s.Label, label)
		assert.True(t, s.Fallback, label)
		assert.Equal(t, mood.Balanced, s.Intensity)
	}
}

func TestDefaultTable_RowsSumTo100(t *testing.T) {
	for _, s := range mood.MustDefault().Settings() {
		assert.Equal(t, 100, s.ReviewPct+s.NewLearningPct+s.ApplicationPct, s.Label)
	}
}

func TestNewModulator_RejectsBadTables(t *testing.T) {
	tests := []struct {
		name    string
		table   mood.Table
		wantErr string
	}{
		{
			name:    "empty",
			table:   mood.Table{Default: "calm"},
			wantErr: "empty",
		},
		{
			name: "sum not 100",
			table: mood.Table{Default: "calm", Moods: map[string]mood.Config{
				"calm": {ReviewPct: 50, NewLearningPct: 40, ApplicationPct: 20, Intensity: mood.Balanced},
			}},
			wantErr: "sum to 110",
		},
		{
			name: "missing default",
			table: mood.Table{Default: "zen", Moods: map[string]mood.Config{
				"calm": {ReviewPct: 40, NewLearningPct: 40, ApplicationPct: 20, Intensity: mood.Balanced},
			}},
			wantErr: "default mood",
		},
		{
			name: "bad intensity",
			table: mood.Table{Default: "calm", Moods: map[string]mood.Config{
				"calm": {ReviewPct: 40, NewLearningPct: 40, ApplicationPct: 20, Intensity: "frantic"},
			}},
			wantErr: "intensity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mood.NewModulator(tt.table)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewModulator_CopiesTable(t *testing.T) {
	table := mood.DefaultTable()
	m, err := mood.NewModulator(table)
	require.NoError(t, err)

	table.Moods["calm"] = mood.Config{ReviewPct: 100, Intensity: mood.Deep}

	assert.Equal(t, 40, m.Resolve("calm").ReviewPct)
}

func TestShouldInsertBreak(t *testing.T) {
	m := mood.MustDefault()

	// calm is balanced: every 5 questions
	assert.Equal(t, []int{4}, m.BreakIndices("calm", 10))
	assert.Equal(t, []int{4, 9}, m.BreakIndices("calm", 12))
	// tired is gentle: every 3 questions
	assert.Equal(t, []int{2, 5}, m.BreakIndices("tired", 8))
	// focused never breaks
	assert.Empty(t, m.BreakIndices("focused", 20))

	assert.False(t, m.ShouldInsertBreak("calm", mood.Balanced, 4, 5), "no break after the last question")
	assert.False(t, m.ShouldInsertBreak("calm", mood.Balanced, -1, 5))
	assert.True(t, m.ShouldInsertBreak("calm", mood.Gentle, 2, 10), "explicit intensity wins")
}

func TestLoadTable_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moods.yaml")
	doc := `default: steady
moods:
  steady:
    review_pct: 30
    new_learning_pct: 50
    application_pct: 20
    include_break: true
    intensity: balanced
  sprint:
    review_pct: 10
    new_learning_pct: 30
    application_pct: 60
    include_break: true
    include_challenge: true
    intensity: energized
    break_every: 4
break_intervals:
  balanced: 7
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	table, err := mood.LoadTable(path)
	require.NoError(t, err)
	m, err := mood.NewModulator(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"sprint", "steady"}, table.Labels())
	assert.Equal(t, "steady", m.Resolve("calm").Label)
	assert.Equal(t, 7, m.BreakInterval("steady", mood.Balanced))
	assert.Equal(t, 4, m.BreakInterval("sprint", mood.Energized))
	assert.Equal(t, []int{3, 7}, m.BreakIndices("sprint", 10))
}

func TestLoadTable_Errors(t *testing.T) {
	_, err := mood.LoadTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = mood.ParseTable([]byte("moods: [not, a, map]"))
	assert.Error(t, err)
}
