package repository

import (
	"context"

	"handbook-ai-api/internal/domain/entity"
)

// HandbookJobRepository 手册生成任务仓储接口
type HandbookJobRepository interface {
	// Create 创建任务
	Create(ctx context.Context, job *entity.HandbookJob) error
	// GetByID 根据 ID 获取任务
	GetByID(ctx context.Context, id string) (*entity.HandbookJob, error)
	// Update 更新任务
	Update(ctx context.Context, job *entity.HandbookJob) error
	// List 分页查询任务
	List(ctx context.Context, status string, p Pagination) (*PagedResult[*entity.HandbookJob], error)
}
