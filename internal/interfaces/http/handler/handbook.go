package handler

import (
	"github.com/gin-gonic/gin"

	"handbook-ai-api/internal/config"
	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/internal/domain/repository"
	"handbook-ai-api/internal/infrastructure/messaging"
	"handbook-ai-api/internal/interfaces/http/dto"
	"handbook-ai-api/pkg/logger"
)

// HandbookHandler 手册生成任务处理器
type HandbookHandler struct {
	cfg      *config.Config
	jobRepo  repository.HandbookJobRepository
	producer *messaging.Producer
}

// NewHandbookHandler 创建手册生成任务处理器
func NewHandbookHandler(cfg *config.Config, jobRepo repository.HandbookJobRepository, producer *messaging.Producer) *HandbookHandler {
	return &HandbookHandler{
		cfg:      cfg,
		jobRepo:  jobRepo,
		producer: producer,
	}
}

// CreateHandbook 创建手册生成任务
// @Summary 创建手册生成任务
// @Description 接受主题与字数目标，创建异步生成任务并入队
// @Tags Handbooks
// @Accept json
// @Produce json
// @Param request body dto.CreateHandbookRequest true "任务参数"
// @Success 202 {object} dto.Response[dto.JobResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/handbooks [post]
func (h *HandbookHandler) CreateHandbook(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateHandbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	job := entity.NewHandbookJob(req.Topic, req.TargetWords)
	job.Provider = provider
	job.Model = model

	if err := h.jobRepo.Create(ctx, job); err != nil {
		logger.Error(ctx, "failed to create job", err)
		dto.InternalError(c, "failed to create job")
		return
	}

	if _, err := h.producer.PublishHandbookJob(ctx, &messaging.HandbookJobMessage{
		JobID:       job.ID,
		Topic:       job.Topic,
		TargetWords: job.TargetWords,
		Provider:    provider,
		Model:       model,
	}); err != nil {
		logger.Error(ctx, "failed to enqueue job", err, "job_id", job.ID)
		job.Fail("failed to enqueue job")
		if uerr := h.jobRepo.Update(ctx, job); uerr != nil {
			logger.Error(ctx, "failed to mark job failed", uerr, "job_id", job.ID)
		}
		dto.InternalError(c, "failed to enqueue job")
		return
	}

	dto.Accepted(c, dto.ToJobResponse(job))
}

// GetJob 获取任务详情
// @Summary 获取任务详情
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid} [get]
func (h *HandbookHandler) GetJob(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		logger.Error(ctx, "failed to get job", err, "job_id", jobID)
		dto.InternalError(c, "failed to get job")
		return
	}
	if job == nil {
		dto.NotFound(c, "job not found")
		return
	}

	dto.Success(c, dto.ToJobResponse(job))
}

// ListJobs 分页查询任务
// @Summary 分页查询任务
// @Tags Jobs
// @Produce json
// @Param status query string false "状态过滤"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.JobResponse]
// @Router /v1/jobs [get]
func (h *HandbookHandler) ListJobs(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)
	status := c.Query("status")

	result, err := h.jobRepo.List(ctx, status, repository.Pagination{
		Page:     pageReq.Page,
		PageSize: pageReq.PageSize,
	})
	if err != nil {
		logger.Error(ctx, "failed to list jobs", err)
		dto.InternalError(c, "failed to list jobs")
		return
	}

	resp := dto.ToJobListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CancelJob 取消任务
// @Summary 取消任务
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.CancelJobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "任务已结束"
// @Router /v1/jobs/{jid} [delete]
func (h *HandbookHandler) CancelJob(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		logger.Error(ctx, "failed to get job", err, "job_id", jobID)
		dto.InternalError(c, "failed to get job")
		return
	}
	if job == nil {
		dto.NotFound(c, "job not found")
		return
	}

	if job.Status == entity.JobStatusCompleted || job.Status == entity.JobStatusFailed {
		dto.Conflict(c, "job already finished")
		return
	}
	if job.Status == entity.JobStatusCancelled {
		dto.Success(c, &dto.CancelJobResponse{ID: jobID, Cancelled: true})
		return
	}

	job.Cancel()
	if err := h.jobRepo.Update(ctx, job); err != nil {
		logger.Error(ctx, "failed to cancel job", err, "job_id", jobID)
		dto.InternalError(c, "failed to cancel job")
		return
	}

	dto.Success(c, &dto.CancelJobResponse{ID: jobID, Cancelled: true})
}
