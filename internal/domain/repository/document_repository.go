package repository

import (
	"context"

	"handbook-ai-api/internal/domain/entity"
)

// DocumentRepository 成品文档仓储接口
type DocumentRepository interface {
	// Create 保存文档
	Create(ctx context.Context, doc *entity.Document) error
	// GetByID 根据 ID 获取文档
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetByJobID 根据任务 ID 获取文档
	GetByJobID(ctx context.Context, jobID string) (*entity.Document, error)
	// List 分页查询文档
	List(ctx context.Context, p Pagination) (*PagedResult[*entity.Document], error)
}
