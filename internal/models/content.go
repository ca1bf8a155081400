package models

import "time"

// Certification is a TExES certification exam, e.g. "Core Subjects EC-6 (391)".
type Certification struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Domain is a weighted section of a certification exam.
type Domain struct {
	ID              string    `json:"id"`
	CertificationID string    `json:"certificationId"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Weight          float64   `json:"weight"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Concept is the finest-grained topic questions and content are tagged with.
type Concept struct {
	ID          string    `json:"id"`
	DomainID    string    `json:"domainId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ContentItem is a practice or study item attached to a concept. The number of
// items per concept is the concept's content richness.
type ContentItem struct {
	ID        string    `json:"id"`
	ConceptID string    `json:"conceptId"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Content item kinds.
const (
	ContentKindLesson   = "lesson"
	ContentKindPractice = "practice"
	ContentKindScenario = "scenario"
	ContentKindVideo    = "video"
)

// ValidContentKind reports whether kind is a known content item kind.
func ValidContentKind(kind string) bool {
	switch kind {
	case ContentKindLesson, ContentKindPractice, ContentKindScenario, ContentKindVideo:
		return true
	}
	return false
}
