package handbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"handbook-ai-api/internal/application/retrieval"
	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/internal/infrastructure/messaging"
	"handbook-ai-api/internal/workflow/node"
	"handbook-ai-api/pkg/logger"
	"handbook-ai-api/pkg/metrics"
)

// PlaceholderNotice 重试耗尽时写入节点的占位内容
const PlaceholderNotice = "_This section could not be generated from the available sources._"

// WriterConfig 分节写作配置
type WriterConfig struct {
	RetrievalK        int
	MaxGroundingChars int
	FragmentCharCap   int
	MaxRetries        int
	Backoff           messaging.BackoffConfig
}

// Writer 分节写作器：为单个大纲节点检索接地片段并调用生成服务商。
type Writer struct {
	engine    *retrieval.Engine
	generator Generator
	cfg       WriterConfig
}

func NewWriter(engine *retrieval.Engine, generator Generator, cfg WriterConfig) *Writer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = messaging.DefaultBackoffConfig()
	}
	return &Writer{
		engine:    engine,
		generator: generator,
		cfg:       cfg,
	}
}

// DraftRequest 一次起草/扩写请求
type DraftRequest struct {
	Topic    string
	Node     *entity.OutlineNode
	Covered  []string
	Extend   bool
	MinWords int
	MaxWords int
}

// DraftResult 起草结果：原始文本与本次调用的接地上下文
type DraftResult struct {
	Content string
	Context *GenerationContext
}

// Draft 为节点起草或扩写内容。
// 检索失败原样上抛（对整个运行致命）；服务商调用按指数退避重试，
// 可判定为不可重试的错误立即终止；重试耗尽返回 *GenerationError（非致命）。
func (w *Writer) Draft(ctx context.Context, req DraftRequest) (*DraftResult, error) {
	if req.Node == nil {
		return nil, fmt.Errorf("node is nil")
	}

	fragments, err := w.engine.Query(ctx, retrieval.QueryInput{
		Query: req.Node.Title,
		TopK:  w.cfg.RetrievalK,
	})
	if err != nil {
		return nil, fmt.Errorf("grounding retrieval: %w", err)
	}

	gc := BuildGenerationContext(fragments, w.cfg.MaxGroundingChars, w.cfg.FragmentCharCap)

	kind := "draft"
	if req.Extend {
		kind = "expand"
	}
	log := logger.FromContext(ctx)

	writeReq := WriteRequest{
		Topic:        req.Topic,
		SectionTitle: req.Node.Title,
		SourcesBlock: gc.SourcesBlock(),
		Covered:      req.Covered,
		Extend:       req.Extend,
		MinWords:     req.MinWords,
		MaxWords:     req.MaxWords,
	}
	if req.Extend {
		writeReq.ExistingTail = node.TruncateByRunes(req.Node.Content, w.cfg.FragmentCharCap*2)
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt < w.cfg.MaxRetries; attempt++ {
		attempts = attempt + 1
		if attempt > 0 {
			wait := w.cfg.Backoff.CalculateBackoff(attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		text, genErr := w.generator.WriteSection(ctx, writeReq)
		if genErr == nil {
			metrics.SectionDraftsTotal.WithLabelValues(kind, "ok").Inc()
			log.Debug("section drafted",
				"node_id", req.Node.ID,
				"title", req.Node.Title,
				"kind", kind,
				"words", wordRange(req.MinWords, req.MaxWords),
				"attempt", attempt+1,
			)
			return &DraftResult{Content: text, Context: gc}, nil
		}

		lastErr = genErr
		metrics.SectionDraftsTotal.WithLabelValues(kind, "error").Inc()
		log.Warn("section generation attempt failed",
			"node_id", req.Node.ID,
			"kind", kind,
			"attempt", attempt+1,
			"error", genErr,
		)

		if errors.Is(genErr, context.Canceled) || errors.Is(genErr, context.DeadlineExceeded) {
			return nil, genErr
		}
		if node.IsFatalProviderError(genErr) {
			break
		}
	}

	return nil, &GenerationError{
		NodeID:   req.Node.ID,
		Title:    req.Node.Title,
		Attempts: attempts,
		Err:      lastErr,
	}
}
