package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"handbook-ai-api/internal/application/ingest"
	"handbook-ai-api/internal/application/retrieval"
	"handbook-ai-api/internal/interfaces/http/dto"
	"handbook-ai-api/pkg/logger"
)

// SourceHandler 来源语料处理器
type SourceHandler struct {
	ingest *ingest.Service
}

// NewSourceHandler 创建来源语料处理器
func NewSourceHandler(ingestSvc *ingest.Service) *SourceHandler {
	return &SourceHandler{ingest: ingestSvc}
}

// IngestSource 摄取来源文档
// @Summary 摄取来源文档
// @Description 将分页文本切分、向量化并写入语料库；同名文档重复摄取会整体替换
// @Tags Sources
// @Accept json
// @Produce json
// @Param request body dto.IngestSourceRequest true "来源文档"
// @Success 201 {object} dto.Response[dto.IngestSourceResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/sources [post]
func (h *SourceHandler) IngestSource(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if msg := req.Validate(); msg != "" {
		dto.BadRequest(c, msg)
		return
	}

	count, err := h.ingest.IngestDocument(ctx, req.Name, req.ToPages())
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrNoChunks):
			dto.BadRequest(c, "document has no usable text")
		case errors.Is(err, retrieval.ErrVectorDisabled):
			dto.ServiceUnavailable(c, "vector store not available")
		default:
			logger.Error(ctx, "failed to ingest source", err, "document", req.Name)
			dto.InternalError(c, "failed to ingest source")
		}
		return
	}

	dto.Created(c, &dto.IngestSourceResponse{
		Document:  req.Name,
		Fragments: count,
	})
}

// DeleteSource 删除来源文档
// @Summary 删除来源文档
// @Description 从语料库移除指定来源文档的全部片段
// @Tags Sources
// @Produce json
// @Param name path string true "文档名"
// @Success 204
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/sources/{name} [delete]
func (h *SourceHandler) DeleteSource(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	if err := h.ingest.RemoveDocument(ctx, name); err != nil {
		if errors.Is(err, retrieval.ErrVectorDisabled) {
			dto.ServiceUnavailable(c, "vector store not available")
			return
		}
		logger.Error(ctx, "failed to delete source", err, "document", name)
		dto.InternalError(c, "failed to delete source")
		return
	}

	c.Status(204)
}
