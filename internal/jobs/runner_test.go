package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	schedule string
	release  chan struct{}
	started  atomic.Int32
}

func (b *blockingJob) Name() string     { return "blocking" }
func (b *blockingJob) Schedule() string { return b.schedule }

func (b *blockingJob) Run() {
	b.started.Add(1)
	<-b.release
}

func TestTaskExecutor_InvalidSchedule(t *testing.T) {
	executor := NewTaskExecutor(&blockingJob{schedule: "every now and then"})
	assert.Error(t, executor.Start())
	executor.Stop()
}

func TestTaskExecutor_SkipsOverlappingRuns(t *testing.T) {
	job := &blockingJob{schedule: "@every 1h", release: make(chan struct{})}
	executor := NewTaskExecutor(job)

	done := make(chan struct{})
	go func() {
		executor.runOnce(job)
		close(done)
	}()
	require.Eventually(t, func() bool { return job.started.Load() == 1 }, time.Second, 10*time.Millisecond)

	// still running, so this one is skipped
	executor.runOnce(job)
	assert.Equal(t, int32(1), job.started.Load())

	close(job.release)
	<-done

	executor.runOnce(job)
	assert.Equal(t, int32(2), job.started.Load())
}

func TestTaskExecutor_StartStop(t *testing.T) {
	job := &blockingJob{schedule: "@every 1h", release: make(chan struct{})}
	close(job.release)

	executor := NewTaskExecutor(job)
	require.NoError(t, executor.Start())
	executor.Stop()
	assert.Equal(t, int32(0), job.started.Load())
}
