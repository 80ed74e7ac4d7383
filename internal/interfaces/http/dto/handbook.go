package dto

import (
	"encoding/json"
	"time"

	"handbook-ai-api/internal/domain/entity"
)

// CreateHandbookRequest 创建手册生成任务请求
type CreateHandbookRequest struct {
	Topic       string `json:"topic" binding:"required"`
	TargetWords int    `json:"target_words" binding:"required,min=500"`
	Provider    string `json:"provider,omitempty"`
	Model       string `json:"model,omitempty"`
}

// JobResponse 任务响应
type JobResponse struct {
	ID           string          `json:"id"`
	Topic        string          `json:"topic"`
	TargetWords  int             `json:"target_words"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	Stage        string          `json:"stage,omitempty"`
	DocumentID   string          `json:"document_id,omitempty"`
	Diagnostics  json.RawMessage `json:"diagnostics,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	DurationMs   int             `json:"duration_ms,omitempty"`
	CreatedAt    string          `json:"created_at"`
	CompletedAt  string          `json:"completed_at,omitempty"`
}

// ToJobResponse 实体转响应
func ToJobResponse(job *entity.HandbookJob) *JobResponse {
	if job == nil {
		return nil
	}
	resp := &JobResponse{
		ID:           job.ID,
		Topic:        job.Topic,
		TargetWords:  job.TargetWords,
		Status:       string(job.Status),
		Progress:     job.Progress,
		Stage:        job.Stage,
		DocumentID:   job.DocumentID,
		Diagnostics:  job.Diagnostics,
		ErrorMessage: job.ErrorMessage,
		DurationMs:   job.DurationMs,
		CreatedAt:    job.CreatedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

// ToJobListResponse 实体列表转响应
func ToJobListResponse(jobs []*entity.HandbookJob) []*JobResponse {
	out := make([]*JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ToJobResponse(j))
	}
	return out
}

// CancelJobResponse 取消任务响应
type CancelJobResponse struct {
	ID        string `json:"id"`
	Cancelled bool   `json:"cancelled"`
}
