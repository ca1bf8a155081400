package mood

import (
	"errors"
	"fmt"
)

// Setting is a resolved mood configuration.
type Setting struct {
	Label string `json:"label"`
	Config
	// Fallback is set when the requested label was unknown or empty.
	Fallback bool `json:"fallback"`
}

// Modulator resolves mood labels against an immutable table.
type Modulator struct {
	moods     map[string]Config
	def       string
	intervals map[Intensity]int
}

// NewModulator validates t and copies it; later changes to t are not observed.
func NewModulator(t Table) (*Modulator, error) {
	if len(t.Moods) == 0 {
		return nil, errors.New("mood table is empty")
	}
	m := &Modulator{
		moods:     make(map[string]Config, len(t.Moods)),
		def:       normalize(t.Default),
		intervals: defaultBreakIntervals(),
	}
	for label, cfg := range t.Moods {
		key := normalize(label)
		if key == "" {
			return nil, errors.New("mood table contains an empty label")
		}
		if err := cfg.validate(key); err != nil {
			return nil, err
		}
		m.moods[key] = cfg
	}
	if _, ok := m.moods[m.def]; !ok {
		return nil, fmt.Errorf("default mood %q is not in the table", t.Default)
	}
	for intensity, every := range t.BreakIntervals {
		if !intensity.Valid() || every < 1 {
			return nil, fmt.Errorf("invalid break interval %d for intensity %q", every, intensity)
		}
		m.intervals[intensity] = every
	}
	return m, nil
}

// MustDefault returns a modulator over DefaultTable.
func MustDefault() *Modulator {
	m, err := NewModulator(DefaultTable())
	if err != nil {
		panic(err)
	}
	return m
}

// Resolve returns the configuration for label. Unknown or empty labels resolve
// to the default mood with Fallback set.
func (m *Modulator) Resolve(label string) Setting {
	key := normalize(label)
	if cfg, ok := m.moods[key]; ok {
		return Setting{Label: key, Config: cfg}
	}
	return Setting{Label: m.def, Config: m.moods[m.def], Fallback: true}
}

// Settings returns every configured mood, sorted by label.
func (m *Modulator) Settings() []Setting {
	t := Table{Moods: m.moods}
	out := make([]Setting, 0, len(m.moods))
	for _, label := range t.Labels() {
		out = append(out, Setting{Label: label, Config: m.moods[label]})
	}
	return out
}

// BreakInterval is the number of questions between breaks for a mood at the
// given intensity. A mood's own BreakEvery wins over the intensity interval.
func (m *Modulator) BreakInterval(label string, intensity Intensity) int {
	s := m.Resolve(label)
	if s.BreakEvery > 0 {
		return s.BreakEvery
	}
	if !intensity.Valid() {
		intensity = s.Intensity
	}
	return m.intervals[intensity]
}

// ShouldInsertBreak reports whether a break follows the question at zero-based
// index in a session of total questions. Breaks fall after every interval-th
// question and never after the last one.
func (m *Modulator) ShouldInsertBreak(label string, intensity Intensity, index, total int) bool {
	if index < 0 || index >= total-1 {
		return false
	}
	if !m.Resolve(label).IncludeBreak {
		return false
	}
	every := m.BreakInterval(label, intensity)
	if every < 1 {
		return false
	}
	return (index+1)%every == 0
}

// BreakIndices lists the indices after which breaks fall for a whole session.
func (m *Modulator) BreakIndices(label string, total int) []int {
	intensity := m.Resolve(label).Intensity
	out := []int{}
	for i := 0; i < total; i++ {
		if m.ShouldInsertBreak(label, intensity, i, total) {
			out = append(out, i)
		}
	}
	return out
}
