package dto

import (
	"time"

	"handbook-ai-api/internal/domain/entity"
)

// DocumentResponse 成稿文档响应
type DocumentResponse struct {
	ID              string   `json:"id"`
	JobID           string   `json:"job_id"`
	Topic           string   `json:"topic"`
	TableOfContents string   `json:"table_of_contents"`
	Content         string   `json:"content"`
	WordCount       int      `json:"word_count"`
	SourceDocuments []string `json:"source_documents"`
	CreatedAt       string   `json:"created_at"`
}

// ToDocumentResponse 实体转响应
func ToDocumentResponse(doc *entity.Document) *DocumentResponse {
	if doc == nil {
		return nil
	}
	return &DocumentResponse{
		ID:              doc.ID,
		JobID:           doc.JobID,
		Topic:           doc.Topic,
		TableOfContents: doc.TableOfContents,
		Content:         doc.Content,
		WordCount:       doc.WordCount,
		SourceDocuments: doc.SourceDocuments,
		CreatedAt:       doc.CreatedAt.Format(time.RFC3339),
	}
}
