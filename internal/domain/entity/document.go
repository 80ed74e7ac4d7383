package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Document 装配完成的手册：一次生成任务的唯一终态产物，创建后不可变。
type Document struct {
	ID              string         `json:"id"`
	JobID           string         `json:"job_id"`
	Topic           string         `json:"topic"`
	TableOfContents string         `json:"table_of_contents"`
	Content         string         `json:"content"`
	WordCount       int            `json:"word_count"`
	SourceDocuments pq.StringArray `json:"source_documents" gorm:"type:text[]"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewDocument 创建文档
func NewDocument(jobID, topic string) *Document {
	return &Document{
		ID:        uuid.NewString(),
		JobID:     jobID,
		Topic:     topic,
		CreatedAt: time.Now().UTC(),
	}
}
