package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/certbloom/certbloom/internal/jobs"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingApplier struct {
	got chan models.MasteryUpdate
}

func (r *recordingApplier) ApplyMasteryUpdate(_ context.Context, u models.MasteryUpdate) (models.MasteryChange, error) {
	r.got <- u
	return models.MasteryChange{TopicKey: u.TopicKey}, nil
}

func TestWorkerQueue_EnqueueMasteryUpdate(t *testing.T) {
	pool := worker.NewPool(1, 4)
	applier := &recordingApplier{got: make(chan models.MasteryUpdate, 1)}
	pool.Start(context.Background())
	defer pool.Stop()

	queue := jobs.NewWorkerQueue(pool, applier)
	update := models.MasteryUpdate{UserID: "u1", TopicKey: "geometry", WasCorrect: true}
	require.NoError(t, queue.EnqueueMasteryUpdate(update))

	select {
	case got := <-applier.got:
		assert.Equal(t, update, got)
	case <-time.After(2 * time.Second):
		t.Fatal("deferred update was not applied")
	}
}

func TestWorkerQueue_StoppedPoolRejects(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()

	queue := jobs.NewWorkerQueue(pool, &recordingApplier{got: make(chan models.MasteryUpdate, 1)})
	assert.ErrorIs(t, queue.EnqueueMasteryUpdate(models.MasteryUpdate{}), worker.ErrPoolStopped)
}
