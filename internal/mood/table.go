// Package mood maps a self-reported mood to the composition of a practice
// session: how much review, new learning and application it should contain,
// whether breaks and challenge items are offered, and where breaks fall.
package mood

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Intensity is the pacing of a session.
type Intensity string

const (
	Gentle    Intensity = "gentle"
	Balanced  Intensity = "balanced"
	Deep      Intensity = "deep"
	Energized Intensity = "energized"
)

// Valid reports whether i is a known intensity.
func (i Intensity) Valid() bool {
	switch i {
	case Gentle, Balanced, Deep, Energized:
		return true
	}
	return false
}

// Config is the session composition for one mood.
type Config struct {
	ReviewPct        int       `yaml:"review_pct" json:"reviewPct"`
	NewLearningPct   int       `yaml:"new_learning_pct" json:"newLearningPct"`
	ApplicationPct   int       `yaml:"application_pct" json:"applicationPct"`
	IncludeBreak     bool      `yaml:"include_break" json:"includeBreak"`
	IncludeChallenge bool      `yaml:"include_challenge" json:"includeChallenge"`
	Intensity        Intensity `yaml:"intensity" json:"intensity"`
	// BreakEvery overrides the intensity's break interval when positive.
	BreakEvery int `yaml:"break_every,omitempty" json:"-"`
}

func (c Config) validate(label string) error {
	for _, pct := range []int{c.ReviewPct, c.NewLearningPct, c.ApplicationPct} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("mood %q: percentages must lie in [0,100]", label)
		}
	}
	if sum := c.ReviewPct + c.NewLearningPct + c.ApplicationPct; sum != 100 {
		return fmt.Errorf("mood %q: percentages sum to %d, want 100", label, sum)
	}
	if !c.Intensity.Valid() {
		return fmt.Errorf("mood %q: unknown intensity %q", label, c.Intensity)
	}
	if c.BreakEvery < 0 {
		return fmt.Errorf("mood %q: break_every must not be negative", label)
	}
	return nil
}

// Table is the mood lookup table plus the label used for unknown moods.
type Table struct {
	Default string            `yaml:"default"`
	Moods   map[string]Config `yaml:"moods"`
	// BreakIntervals maps an intensity to the number of questions between breaks.
	BreakIntervals map[Intensity]int `yaml:"break_intervals,omitempty"`
}

// Mood labels of the default table.
const (
	Calm          = "calm"
	Tired         = "tired"
	Anxious       = "anxious"
	Focused       = "focused"
	EnergizedMood = "energized"
)

// DefaultTable returns the built-in five-mood table.
func DefaultTable() Table {
	return Table{
		Default: Calm,
		Moods: map[string]Config{
			Calm:          {ReviewPct: 40, NewLearningPct: 40, ApplicationPct: 20, IncludeBreak: true, Intensity: Balanced},
			Tired:         {ReviewPct: 60, NewLearningPct: 25, ApplicationPct: 15, IncludeBreak: true, Intensity: Gentle},
			Anxious:       {ReviewPct: 50, NewLearningPct: 35, ApplicationPct: 15, IncludeBreak: true, Intensity: Gentle},
			Focused:       {ReviewPct: 25, NewLearningPct: 40, ApplicationPct: 35, IncludeChallenge: true, Intensity: Deep},
			EnergizedMood: {ReviewPct: 20, NewLearningPct: 35, ApplicationPct: 45, IncludeBreak: true, IncludeChallenge: true, Intensity: Energized},
		},
		BreakIntervals: defaultBreakIntervals(),
	}
}

func defaultBreakIntervals() map[Intensity]int {
	return map[Intensity]int{
		Gentle:    3,
		Balanced:  5,
		Deep:      8,
		Energized: 6,
	}
}

// ParseTable decodes a YAML table. NewModulator fills in missing break intervals.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parse mood table: %w", err)
	}
	return t, nil
}

// LoadTable reads a YAML table from path.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read mood table: %w", err)
	}
	return ParseTable(data)
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Labels returns the table's mood labels in sorted order.
func (t Table) Labels() []string {
	labels := make([]string, 0, len(t.Moods))
	for l := range t.Moods {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
