package selection

import (
	"context"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/logger"
)

// Mode labels how a selection was produced.
const (
	ModeAdaptive = "adaptive"
	ModeStandard = "standard"
	ModeEmpty    = "empty"
)

const (
	msgAdaptiveFocused = "Personalized session focused on your weak areas"
	msgAdaptive        = "Personalized session based on your progress"
	msgStandard        = "Standard practice session"
	msgEmpty           = "No questions are available for this subject area yet"
)

// Selector combines a Ranker with the standard fallback pull.
type Selector struct {
	ranker   Ranker
	standard StandardSource
}

func NewSelector(ranker Ranker, standard StandardSource) *Selector {
	return &Selector{ranker: ranker, standard: standard}
}

// Select returns at most req.SessionLength questions. A ranking failure or an
// empty ranking degrades to the standard pull with IsAdaptive false; only a
// failing standard pull is an error.
func (s *Selector) Select(ctx context.Context, req RankRequest) (Selection, string, error) {
	if err := req.Validate(); err != nil {
		return Selection{}, "", err
	}
	log := logger.FromContext(ctx).WithPrefix("selector").WithField("user_id", req.UserID)

	ranked, err := s.ranker.Rank(ctx, req)
	switch {
	case err != nil:
		log.WithError(err).Warn("ranking unavailable, using standard selection")
	case len(ranked) == 0:
		log.Debug("no personalized candidates for %s", req.SubjectArea)
	default:
		if len(ranked) > req.SessionLength {
			ranked = ranked[:req.SessionLength]
		}
		msg := msgAdaptive
		if req.FocusWeakAreas {
			msg = msgAdaptiveFocused
		}
		return Selection{Questions: ranked, IsAdaptive: true, Message: msg}, ModeAdaptive, nil
	}

	ids, err := s.standard.RandomQuestionIDs(ctx, req.SubjectArea, req.SessionLength)
	if err != nil {
		log.WithError(err).Error("standard selection failed")
		return Selection{}, "", errors.NewStoreUnavailableError(err)
	}
	if len(ids) == 0 {
		return Selection{
			Questions:  []Ranked{},
			Message:    msgEmpty,
			ReasonCode: ReasonCodeNoQuestions,
		}, ModeEmpty, nil
	}
	if len(ids) > req.SessionLength {
		ids = ids[:req.SessionLength]
	}
	questions := make([]Ranked, len(ids))
	for i, id := range ids {
		questions[i] = Ranked{QuestionID: id, Reason: ReasonStandard}
	}
	return Selection{Questions: questions, Message: msgStandard}, ModeStandard, nil
}
