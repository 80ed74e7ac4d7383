package handbook

import (
	"context"
	"strconv"
	"time"

	"handbook-ai-api/internal/workflow/chain"
	wfmodel "handbook-ai-api/internal/workflow/model"
	"handbook-ai-api/pkg/metrics"
)

// PlanRequest 大纲规划请求
type PlanRequest struct {
	Topic        string
	TargetWords  int
	SourcesBlock string
	Corrective   string
}

// WriteRequest 分节写作请求
type WriteRequest struct {
	Topic        string
	SectionTitle string
	SourcesBlock string
	Covered      []string
	Extend       bool
	ExistingTail string
	MinWords     int
	MaxWords     int
}

// Generator 生成服务商依赖（port）：单次调用，不含重试。
type Generator interface {
	PlanOutline(ctx context.Context, req PlanRequest) (string, error)
	WriteSection(ctx context.Context, req WriteRequest) (string, error)
}

// ChainGenerator 基于 Eino 链的生成实现。
// 每次调用经由 ProviderGate 获取槽位并上报调用指标。
type ChainGenerator struct {
	outline *chain.OutlineChain
	section *chain.SectionChain
	gate    *ProviderGate

	provider    string
	model       string
	temperature *float32
	maxTokens   *int
}

func NewChainGenerator(outline *chain.OutlineChain, section *chain.SectionChain, gate *ProviderGate, provider, model string, temperature float32, maxTokens int) *ChainGenerator {
	g := &ChainGenerator{
		outline:  outline,
		section:  section,
		gate:     gate,
		provider: provider,
		model:    model,
	}
	if temperature > 0 {
		g.temperature = &temperature
	}
	if maxTokens > 0 {
		g.maxTokens = &maxTokens
	}
	return g
}

var _ Generator = (*ChainGenerator)(nil)

func (g *ChainGenerator) PlanOutline(ctx context.Context, req PlanRequest) (string, error) {
	if err := g.gate.Acquire(ctx); err != nil {
		return "", err
	}
	defer g.gate.Release()

	start := time.Now()
	out, err := g.outline.Invoke(ctx, &wfmodel.OutlinePlanInput{
		Topic:        req.Topic,
		TargetWords:  req.TargetWords,
		SourcesBlock: req.SourcesBlock,
		Corrective:   req.Corrective,
		Provider:     g.provider,
		Model:        g.model,
		Temperature:  g.temperature,
		MaxTokens:    g.maxTokens,
	})
	g.observe(start, err, outMeta(out))
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (g *ChainGenerator) WriteSection(ctx context.Context, req WriteRequest) (string, error) {
	if err := g.gate.Acquire(ctx); err != nil {
		return "", err
	}
	defer g.gate.Release()

	start := time.Now()
	out, err := g.section.Invoke(ctx, &wfmodel.SectionWriteInput{
		Topic:        req.Topic,
		SectionTitle: req.SectionTitle,
		SourcesBlock: req.SourcesBlock,
		Covered:      req.Covered,
		Extend:       req.Extend,
		ExistingText: req.ExistingTail,
		MinWords:     req.MinWords,
		MaxWords:     req.MaxWords,
		Provider:     g.provider,
		Model:        g.model,
		Temperature:  g.temperature,
		MaxTokens:    g.maxTokens,
	})
	g.observe(start, err, sectionMeta(out))
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (g *ChainGenerator) observe(start time.Time, err error, meta *wfmodel.LLMUsageMeta) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallsTotal.WithLabelValues(g.provider, status).Inc()
	metrics.LLMCallDuration.WithLabelValues(g.provider).Observe(time.Since(start).Seconds())
	if meta != nil {
		if meta.PromptTokens > 0 {
			metrics.LLMTokensTotal.WithLabelValues(g.provider, "prompt").Add(float64(meta.PromptTokens))
		}
		if meta.CompletionTokens > 0 {
			metrics.LLMTokensTotal.WithLabelValues(g.provider, "completion").Add(float64(meta.CompletionTokens))
		}
	}
}

func outMeta(out *wfmodel.OutlinePlanOutput) *wfmodel.LLMUsageMeta {
	if out == nil {
		return nil
	}
	return &out.Meta
}

func sectionMeta(out *wfmodel.SectionWriteOutput) *wfmodel.LLMUsageMeta {
	if out == nil {
		return nil
	}
	return &out.Meta
}

// 便于日志输出的词数区间描述
func wordRange(min, max int) string {
	return strconv.Itoa(min) + "-" + strconv.Itoa(max)
}
