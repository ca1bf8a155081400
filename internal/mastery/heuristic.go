// Package mastery holds the mastery update heuristic: how much a practice
// session moves a user's mastery of a topic, and the labels derived from it.
package mastery

import (
	"errors"
	"math"
	"time"

	"github.com/certbloom/certbloom/internal/models"
)

// Richness classifies a topic by how many practice items it offers.
type Richness int

const (
	Light Richness = iota
	Medium
	Rich
)

func (r Richness) String() string {
	switch r {
	case Rich:
		return "rich"
	case Medium:
		return "medium"
	default:
		return "light"
	}
}

// ClassifyRichness maps an item count to a tier. Zero or negative counts are light.
func ClassifyRichness(itemCount int) Richness {
	switch {
	case itemCount >= 4:
		return Rich
	case itemCount >= 2:
		return Medium
	default:
		return Light
	}
}

// Policy holds the heuristic's constants.
type Policy struct {
	FirstExposure       map[Richness]float64
	SubsequentIncrement float64
	MasteredThreshold   float64
	WeakThreshold       float64
	ExploringCeiling    float64
	ReviewAfter         time.Duration
}

// DefaultPolicy returns the production constants.
func DefaultPolicy() Policy {
	return Policy{
		FirstExposure: map[Richness]float64{
			Rich:   0.70,
			Medium: 0.50,
			Light:  0.40,
		},
		SubsequentIncrement: 0.30,
		MasteredThreshold:   0.80,
		WeakThreshold:       0.70,
		ExploringCeiling:    0.40,
		ReviewAfter:         14 * 24 * time.Hour,
	}
}

// Validate checks the policy's ordering constraints.
func (p Policy) Validate() error {
	rich, medium, light := p.FirstExposure[Rich], p.FirstExposure[Medium], p.FirstExposure[Light]
	if light <= 0 || !(rich >= medium && medium >= light) {
		return errors.New("mastery: first-exposure increments must satisfy rich >= medium >= light > 0")
	}
	if rich > 1 || p.SubsequentIncrement <= 0 || p.SubsequentIncrement > 1 {
		return errors.New("mastery: increments must lie in (0,1]")
	}
	if !(p.ExploringCeiling < p.WeakThreshold && p.WeakThreshold < p.MasteredThreshold && p.MasteredThreshold <= 1) {
		return errors.New("mastery: thresholds must satisfy exploring < weak < mastered <= 1")
	}
	if p.ReviewAfter <= 0 {
		return errors.New("mastery: review interval must be positive")
	}
	return nil
}

// Next returns the mastery after one session outcome. Incorrect outcomes leave
// mastery unchanged; the result is never below current and never above 1.
func (p Policy) Next(current float64, itemCount int, isCorrect, firstExposure bool) float64 {
	current = clamp(current)
	if !isCorrect {
		return current
	}
	inc := p.SubsequentIncrement
	if firstExposure {
		inc = p.FirstExposure[ClassifyRichness(itemCount)]
	}
	return clamp(round4(current + inc))
}

// IsMastered reports whether m has crossed the mastered threshold.
func (p Policy) IsMastered(m float64) bool {
	return m >= p.MasteredThreshold
}

// StageFor maps a mastery value to its stage label.
func (p Policy) StageFor(m float64) models.Stage {
	switch {
	case m >= p.MasteredThreshold:
		return models.StageMastered
	case m >= p.WeakThreshold:
		return models.StageProficient
	case m >= p.ExploringCeiling:
		return models.StageDeveloping
	default:
		return models.StageExploring
	}
}

// NeedsReview is true for weak topics and for topics not practiced within ReviewAfter.
func (p Policy) NeedsReview(m float64, lastPracticed *time.Time, now time.Time) bool {
	if m < p.WeakThreshold {
		return true
	}
	return lastPracticed == nil || now.Sub(*lastPracticed) > p.ReviewAfter
}

// Apply folds an update into the existing record (nil when the topic has never
// been practiced) and returns the new record plus a description of the change.
func (p Policy) Apply(existing *models.ProgressRecord, u models.MasteryUpdate, now time.Time) (models.ProgressRecord, models.MasteryChange) {
	rec := models.ProgressRecord{
		UserID:    u.UserID,
		TopicKey:  u.TopicKey,
		CreatedAt: now,
	}
	if existing != nil {
		rec = *existing
	}
	first := existing == nil || existing.Attempts == 0
	previous := rec.Mastery

	rec.Mastery = p.Next(previous, u.ContentItemCount, u.WasCorrect, first)
	rec.Attempts++
	practiced := now
	rec.LastPracticedAt = &practiced
	rec.Stage = p.StageFor(rec.Mastery)
	rec.NeedsReview = p.NeedsReview(rec.Mastery, rec.LastPracticedAt, now)
	rec.UpdatedAt = now

	return rec, models.MasteryChange{
		TopicKey: u.TopicKey,
		Previous: previous,
		Current:  rec.Mastery,
		Stage:    rec.Stage,
		Mastered: p.IsMastered(rec.Mastery),
	}
}

func clamp(m float64) float64 {
	if m < 0 || math.IsNaN(m) {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}

func round4(m float64) float64 {
	return math.Round(m*10000) / 10000
}
