package models

import "time"

// Stage is the coarse four-level progression label of a ProgressRecord.
type Stage string

const (
	StageExploring  Stage = "exploring"
	StageDeveloping Stage = "developing"
	StageProficient Stage = "proficient"
	StageMastered   Stage = "mastered"
)

// Stages lists every stage in ascending order.
var Stages = []Stage{StageExploring, StageDeveloping, StageProficient, StageMastered}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

// ProgressRecord tracks one user's mastery of one topic (concept).
type ProgressRecord struct {
	UserID          string     `json:"userId"`
	TopicKey        string     `json:"topicKey"`
	Mastery         float64    `json:"mastery"`
	Attempts        int        `json:"attempts"`
	LastPracticedAt *time.Time `json:"lastPracticedAt,omitempty"`
	NeedsReview     bool       `json:"needsReview"`
	Stage           Stage      `json:"stage"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// MasteryUpdate is a pending revision of one topic's mastery, produced by the
// session scorer and applied by the progress service.
type MasteryUpdate struct {
	UserID           string `json:"userId"`
	TopicKey         string `json:"topicKey"`
	ContentItemCount int    `json:"contentItemCount"`
	WasCorrect       bool   `json:"wasCorrect"`
}

// MasteryChange describes an applied MasteryUpdate.
type MasteryChange struct {
	TopicKey string  `json:"topicKey"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Stage    Stage   `json:"stage"`
	Mastered bool    `json:"mastered"`
}

// ProgressSummary aggregates a user's progress records.
type ProgressSummary struct {
	Topics         int           `json:"topics"`
	ByStage        map[Stage]int `json:"byStage"`
	AverageMastery float64       `json:"averageMastery"`
	Mastered       int           `json:"mastered"`
	NeedsReview    int           `json:"needsReview"`
}
