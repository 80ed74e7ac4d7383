package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/internal/domain/repository"
	"handbook-ai-api/internal/infrastructure/persistence/redis"
	"handbook-ai-api/internal/interfaces/http/dto"
	"handbook-ai-api/pkg/logger"
)

const documentCacheTTL = 10 * time.Minute

// DocumentHandler 成稿文档处理器
type DocumentHandler struct {
	docRepo repository.DocumentRepository
	cache   *redis.Cache
}

// NewDocumentHandler 创建成稿文档处理器
func NewDocumentHandler(docRepo repository.DocumentRepository, cache *redis.Cache) *DocumentHandler {
	return &DocumentHandler{
		docRepo: docRepo,
		cache:   cache,
	}
}

// GetDocument 获取成稿文档
// @Summary 获取成稿文档
// @Description 获取装配完成的手册全文；文档不可变，走缓存
// @Tags Documents
// @Produce json
// @Param did path string true "文档 ID"
// @Success 200 {object} dto.Response[dto.DocumentResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/documents/{did} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	ctx := c.Request.Context()
	docID := dto.BindDocumentID(c)

	doc, err := h.loadDocument(ctx, docID)
	if err != nil {
		logger.Error(ctx, "failed to get document", err, "document_id", docID)
		dto.InternalError(c, "failed to get document")
		return
	}
	if doc == nil {
		dto.NotFound(c, "document not found")
		return
	}

	dto.Success(c, dto.ToDocumentResponse(doc))
}

// ListDocuments 分页查询成稿文档
// @Summary 分页查询成稿文档
// @Tags Documents
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.DocumentResponse]
// @Router /v1/documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.docRepo.List(ctx, repository.Pagination{
		Page:     pageReq.Page,
		PageSize: pageReq.PageSize,
	})
	if err != nil {
		logger.Error(ctx, "failed to list documents", err)
		dto.InternalError(c, "failed to list documents")
		return
	}

	resp := make([]*dto.DocumentResponse, 0, len(result.Items))
	for _, doc := range result.Items {
		resp = append(resp, dto.ToDocumentResponse(doc))
	}
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// loadDocument 读取文档，命中缓存则直接反序列化；未命中经 singleflight 回源
func (h *DocumentHandler) loadDocument(ctx context.Context, docID string) (*entity.Document, error) {
	if h.cache == nil {
		return h.docRepo.GetByID(ctx, docID)
	}

	data, err := h.cache.GetOrLoadSafe(ctx, redis.DocumentKey(docID), documentCacheTTL, func() (interface{}, error) {
		return h.docRepo.GetByID(ctx, docID)
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var doc entity.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
