package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffConfig_CalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 10 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 4*time.Second, cfg.CalculateBackoff(2))

	// 超过上限后封顶
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(6))
}

func TestHandbookJobMessage_PayloadRoundTrip(t *testing.T) {
	msg, err := NewMessage("job-1", "handbook_gen", "job-1", &HandbookJobMessage{
		JobID:       "job-1",
		Topic:       "Consensus",
		TargetWords: 20000,
		Provider:    "openai",
		Model:       "gpt-4o-mini",
	})
	assert.NoError(t, err)
	assert.Equal(t, "handbook_gen", msg.Type)
	assert.Equal(t, "job-1", msg.JobID)

	var payload HandbookJobMessage
	assert.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, "job-1", payload.JobID)
	assert.Equal(t, 20000, payload.TargetWords)
	assert.Equal(t, "openai", payload.Provider)
}
