package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandbookJob_Lifecycle(t *testing.T) {
	job := NewHandbookJob("Distributed Systems", 20000)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	assert.NotNil(t, job.StartedAt)

	job.UpdateProgress(55, "drafting")
	assert.Equal(t, 55, job.Progress)
	assert.Equal(t, "drafting", job.Stage)

	job.Complete("doc-1", json.RawMessage(`{"total_words":20123}`))
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, "doc-1", job.DocumentID)
	assert.Equal(t, 100, job.Progress)
	assert.NotNil(t, job.CompletedAt)
}

func TestHandbookJob_UpdateProgress_Clamps(t *testing.T) {
	job := NewHandbookJob("T", 1000)

	job.UpdateProgress(-5, "planning")
	assert.Equal(t, 0, job.Progress)

	job.UpdateProgress(150, "assembling")
	assert.Equal(t, 100, job.Progress)
}

func TestHandbookJob_FailAndRetry(t *testing.T) {
	job := NewHandbookJob("T", 1000)
	job.Start()
	job.Fail("provider unreachable")

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "provider unreachable", job.ErrorMessage)
	assert.True(t, job.CanRetry(3))

	job.Retry()
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.Empty(t, job.ErrorMessage)
	assert.Nil(t, job.StartedAt)

	job.RetryCount = 3
	job.Status = JobStatusFailed
	assert.False(t, job.CanRetry(3))
}

func TestHandbookJob_CancelIsTerminal(t *testing.T) {
	job := NewHandbookJob("T", 1000)
	job.Start()
	job.Cancel()

	assert.Equal(t, JobStatusCancelled, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.False(t, job.CanRetry(3))
}
