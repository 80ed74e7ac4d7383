package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// HandbookJob 手册生成任务
type HandbookJob struct {
	ID           string          `json:"id"`
	Topic        string          `json:"topic"`
	TargetWords  int             `json:"target_words"`
	Provider     string          `json:"provider,omitempty"`
	Model        string          `json:"model,omitempty"`
	Status       JobStatus       `json:"status"`
	Progress     int             `json:"progress"` // 任务进度 (0-100)
	Stage        string          `json:"stage,omitempty"`
	DocumentID   string          `json:"document_id,omitempty"`
	Diagnostics  json.RawMessage `json:"diagnostics,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	RetryCount   int             `json:"retry_count"`
	DurationMs   int             `json:"duration_ms,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// NewHandbookJob 创建新任务
func NewHandbookJob(topic string, targetWords int) *HandbookJob {
	return &HandbookJob{
		ID:          uuid.NewString(),
		Topic:       topic,
		TargetWords: targetWords,
		Status:      JobStatusPending,
		CreatedAt:   time.Now(),
	}
}

// Start 开始执行任务
func (j *HandbookJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// Complete 完成任务
func (j *HandbookJob) Complete(documentID string, diagnostics json.RawMessage) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.DocumentID = documentID
	j.Diagnostics = diagnostics
	j.Progress = 100
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Fail 任务失败
func (j *HandbookJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Cancel 取消任务
func (j *HandbookJob) Cancel() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
}

// Retry 重试任务
func (j *HandbookJob) Retry() {
	j.RetryCount++
	j.Status = JobStatusPending
	j.StartedAt = nil
	j.CompletedAt = nil
	j.ErrorMessage = ""
}

// CanRetry 检查是否可以重试
func (j *HandbookJob) CanRetry(maxRetries int) bool {
	return j.RetryCount < maxRetries && j.Status == JobStatusFailed
}

// UpdateProgress 更新任务进度
func (j *HandbookJob) UpdateProgress(progress int, stage string) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	j.Progress = progress
	j.Stage = stage
}
