package worker

import (
	"context"
	"fmt"

	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
)

// MasteryApplier applies one mastery update. It is implemented by the
// progress service; the interface keeps this package free of services.
type MasteryApplier interface {
	ApplyMasteryUpdate(ctx context.Context, u models.MasteryUpdate) (models.MasteryChange, error)
}

// ApplyMasteryJob re-applies a mastery update whose write failed during
// session completion. It runs once; a second failure is only logged.
type ApplyMasteryJob struct {
	Applier MasteryApplier
	Update  models.MasteryUpdate
}

func (j *ApplyMasteryJob) Name() string { return "apply_mastery_update" }

func (j *ApplyMasteryJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id": j.Update.UserID,
		"topic":   j.Update.TopicKey,
	})
	change, err := j.Applier.ApplyMasteryUpdate(ctx, j.Update)
	if err != nil {
		return fmt.Errorf("deferred mastery update for %s/%s: %w", j.Update.UserID, j.Update.TopicKey, err)
	}
	log.Info("deferred mastery update applied: %.2f -> %.2f", change.Previous, change.Current)
	return nil
}
