package handbook

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/pkg/logger"
	"handbook-ai-api/pkg/metrics"
)

// RunParams 单次生成运行的输入
type RunParams struct {
	JobID       string
	Topic       string
	TargetWords int
}

// ProgressFunc 阶段进度回调 (0-100, 阶段名)
type ProgressFunc func(progress int, stage string)

// Service 手册生成编排：规划 → 首轮起草 → 扩写 → 引用校验 → 组装。
// 节点级生成失败降级为占位内容；检索不可达与规划失败终止整次运行。
type Service struct {
	planner    *Planner
	controller *Controller
	validator  *Validator
	assembler  *Assembler
	cfg        ControllerConfig
}

func NewService(planner *Planner, controller *Controller, cfg ControllerConfig) *Service {
	return &Service{
		planner:    planner,
		controller: controller,
		validator:  NewValidator(),
		assembler:  NewAssembler(),
		cfg:        cfg,
	}
}

// Run 执行一次完整的手册生成。
// 返回组装完成的文档与诊断；诊断中的可降级失败不构成错误返回。
func (s *Service) Run(ctx context.Context, params RunParams, progress ProgressFunc) (*entity.Document, *Diagnostics, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	diag := &Diagnostics{TargetWords: params.TargetWords}

	if progress == nil {
		progress = func(int, string) {}
	}

	doc, err := s.run(ctx, params, diag, progress)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.GenerationRunsTotal.WithLabelValues(status).Inc()
	metrics.GenerationRunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("handbook run failed", "error", err, "elapsed", time.Since(start).String())
		return nil, diag, err
	}

	metrics.WordsWritten.Observe(float64(doc.WordCount))
	log.Info("handbook run finished",
		"document_id", doc.ID,
		"word_count", doc.WordCount,
		"target_words", params.TargetWords,
		"expansion_rounds", diag.ExpansionRounds,
		"generation_errors", len(diag.GenerationErrors),
		"dropped_citations", len(diag.DroppedCitations),
		"budget_exceeded", diag.BudgetExceeded,
		"elapsed", time.Since(start).String(),
	)
	return doc, diag, nil
}

func (s *Service) run(ctx context.Context, params RunParams, diag *Diagnostics, progress ProgressFunc) (*entity.Document, error) {
	log := logger.FromContext(ctx)

	progress(5, "planning")
	outline, err := s.planner.Plan(ctx, params.Topic)
	if err != nil {
		return nil, err
	}
	log.Info("outline planned",
		"leaves", len(outline.Leaves()),
		"target_total", outline.TargetTotal(),
	)

	ledger := &wordLedger{}
	covered := newCoveredList(s.cfg.CoveredTail)
	leaves := len(outline.Leaves())

	// 首轮起草并发执行，完成计数与进度上报必须串行化
	var progressMu sync.Mutex
	done := 0

	progress(10, "drafting")
	err = s.controller.FirstPass(ctx, outline, ledger, covered, diag, func() {
		progressMu.Lock()
		defer progressMu.Unlock()
		done++
		if leaves > 0 {
			progress(10+done*60/leaves, "drafting")
		}
	})
	if err != nil {
		return nil, err
	}

	progress(70, "expanding")
	err = s.controller.ExpandLoop(ctx, outline, ledger, covered, diag, func() {
		progress(70, "expanding")
	})
	if err != nil && !errors.Is(err, ErrBudgetExceeded) {
		return nil, err
	}

	progress(90, "validating")
	for _, leaf := range outline.Leaves() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.validator.Validate(leaf, diag)
		if err := leaf.Finalize(); err != nil {
			return nil, err
		}
	}

	progress(95, "assembling")
	content, err := s.assembler.Assemble(outline)
	if err != nil {
		return nil, err
	}

	doc := entity.NewDocument(params.JobID, params.Topic)
	doc.Content = content
	doc.TableOfContents = s.assembler.TableOfContents(outline)
	doc.WordCount = outline.WordTotal()
	doc.SourceDocuments = sourceDocuments(outline)
	diag.TotalWords = doc.WordCount

	return doc, nil
}

// sourceDocuments 汇总全稿实际引用到的来源文档名（排序去重）
func sourceDocuments(outline *entity.Outline) []string {
	seen := make(map[string]bool)
	for _, leaf := range outline.Leaves() {
		for _, c := range leaf.CitationsUsed {
			seen[c.SourceDocument] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
