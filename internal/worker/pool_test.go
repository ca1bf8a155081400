package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) ApplyMasteryUpdate(ctx context.Context, u models.MasteryUpdate) (models.MasteryChange, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(models.MasteryChange), args.Error(1)
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(2, 8)
	var mu sync.Mutex
	results := map[string]error{}
	pool.OnResult = func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		results[name] = err
	}
	pool.Start(context.Background())

	boom := errors.New("boom")
	require.NoError(t, pool.Submit(funcJob{name: "ok", fn: func(context.Context) error { return nil }}))
	require.NoError(t, pool.Submit(funcJob{name: "fails", fn: func(context.Context) error { return boom }}))
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, results, 2)
	assert.NoError(t, results["ok"])
	assert.ErrorIs(t, results["fails"], boom)
}

func TestPool_SubmitDoesNotBlock(t *testing.T) {
	pool := worker.NewPool(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})
	pool.Start(context.Background())

	require.NoError(t, pool.Submit(funcJob{name: "slow", fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	<-started
	require.NoError(t, pool.Submit(funcJob{name: "queued", fn: func(context.Context) error { return nil }}))

	err := pool.Submit(funcJob{name: "overflow", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrQueueFull)

	close(release)
	pool.Stop()
	assert.ErrorIs(t, pool.Submit(funcJob{name: "late"}), worker.ErrPoolStopped)
	pool.Stop()
}

func TestApplyMasteryJob(t *testing.T) {
	update := models.MasteryUpdate{UserID: "u1", TopicKey: "fractions", ContentItemCount: 4, WasCorrect: true}
	applier := new(mockApplier)
	applier.On("ApplyMasteryUpdate", mock.Anything, update).
		Return(models.MasteryChange{TopicKey: "fractions", Previous: 0, Current: 0.7}, nil).Once()

	job := &worker.ApplyMasteryJob{Applier: applier, Update: update}
	assert.Equal(t, "apply_mastery_update", job.Name())
	require.NoError(t, job.Run(context.Background()))
	applier.AssertExpectations(t)

	failing := new(mockApplier)
	failing.On("ApplyMasteryUpdate", mock.Anything, update).Return(models.MasteryChange{}, errors.New("db down"))
	err := (&worker.ApplyMasteryJob{Applier: failing, Update: update}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u1/fractions")
}

func TestPool_JobsSeeLoggerContext(t *testing.T) {
	pool := worker.NewPool(1, 1)
	done := make(chan bool, 1)
	pool.Start(context.Background())

	require.NoError(t, pool.Submit(funcJob{name: "ctx", fn: func(ctx context.Context) error {
		done <- ctx != nil
		return nil
	}}))

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	pool.Stop()
}
