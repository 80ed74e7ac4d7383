package handbook

import (
	"context"
	"fmt"

	"handbook-ai-api/internal/application/retrieval"
	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/pkg/logger"
)

// PlannerConfig 大纲规划配置
type PlannerConfig struct {
	TargetWords       int
	SamplePerDocument int
	SampleMaxTotal    int
	SampleScanLimit   int
	MaxGroundingChars int
	FragmentCharCap   int
}

// Planner 大纲规划器：用跨文档的广度取样推断文档范围，
// 请求模型产出结构骨架并解析校验。
type Planner struct {
	engine    *retrieval.Engine
	generator Generator
	cfg       PlannerConfig
}

func NewPlanner(engine *retrieval.Engine, generator Generator, cfg PlannerConfig) *Planner {
	return &Planner{
		engine:    engine,
		generator: generator,
		cfg:       cfg,
	}
}

// Plan 规划大纲。结构不可解析时带纠偏说明重试一次；
// 第二次仍失败则返回 ErrOutlinePlanning，整个运行终止。
func (p *Planner) Plan(ctx context.Context, topic string) (*entity.Outline, error) {
	log := logger.FromContext(ctx)

	sample, err := p.engine.PlannerSample(ctx, retrieval.SampleParams{
		Topic:       topic,
		PerDocument: p.cfg.SamplePerDocument,
		MaxTotal:    p.cfg.SampleMaxTotal,
		ScanLimit:   p.cfg.SampleScanLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("planner sample: %w", err)
	}

	gc := BuildGenerationContext(sample, p.cfg.MaxGroundingChars, p.cfg.FragmentCharCap)
	sources := gc.SourcesBlock()

	corrective := ""
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		text, genErr := p.generator.PlanOutline(ctx, PlanRequest{
			Topic:        topic,
			TargetWords:  p.cfg.TargetWords,
			SourcesBlock: sources,
			Corrective:   corrective,
		})
		if genErr != nil {
			lastErr = genErr
			log.Warn("outline generation call failed", "attempt", attempt+1, "error", genErr)
			corrective = "your previous output could not be produced, answer with outline lines only"
			continue
		}

		outline, parseErr := ParseOutline(topic, text)
		if parseErr != nil {
			lastErr = parseErr
			log.Warn("outline unparseable", "attempt", attempt+1, "error", parseErr)
			corrective = parseErr.Error()
			continue
		}

		ScaleTargets(outline, p.cfg.TargetWords)
		log.Info("outline planned",
			"nodes", len(outline.Nodes),
			"sections", len(outline.Leaves()),
			"target_total", outline.TargetTotal(),
		)
		return outline, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrOutlinePlanning, lastErr)
}
