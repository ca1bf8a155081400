package jobs

import (
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/worker"
)

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueMasteryUpdate(u models.MasteryUpdate) error
}

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	masteryPool *worker.Pool
	applier     worker.MasteryApplier
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(masteryPool *worker.Pool, applier worker.MasteryApplier) JobQueue {
	return &WorkerQueue{
		masteryPool: masteryPool,
		applier:     applier,
	}
}

func (q *WorkerQueue) EnqueueMasteryUpdate(u models.MasteryUpdate) error {
	return q.masteryPool.Submit(&worker.ApplyMasteryJob{
		Applier: q.applier,
		Update:  u,
	})
}
