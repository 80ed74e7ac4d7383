// Package repository 定义领域仓储接口
package repository

// Pagination 分页参数
type Pagination struct {
	Page     int
	PageSize int
}

// Offset 计算偏移量
func (p Pagination) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.Limit()
}

// Limit 返回页大小
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// PagedResult 分页结果
type PagedResult[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// NewPagedResult 创建分页结果
func NewPagedResult[T any](items []T, total int64, p Pagination) *PagedResult[T] {
	return &PagedResult[T]{
		Items:    items,
		Total:    total,
		Page:     p.Page,
		PageSize: p.Limit(),
	}
}
