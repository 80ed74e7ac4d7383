package handbook

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/pkg/logger"
)

// wordLedger 串行化的词数台账；并发起草不得在缺口计算上竞争。
type wordLedger struct {
	mu    sync.Mutex
	total int
}

func (l *wordLedger) Add(n int) {
	l.mu.Lock()
	l.total += n
	l.mu.Unlock()
}

func (l *wordLedger) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// coveredList 已完成小节标题记录，供提示词引用避免重复内容。
type coveredList struct {
	mu     sync.Mutex
	titles []string
	tail   int
}

func newCoveredList(tail int) *coveredList {
	if tail <= 0 {
		tail = 20
	}
	return &coveredList{tail: tail}
}

func (c *coveredList) Append(title string) {
	c.mu.Lock()
	c.titles = append(c.titles, title)
	c.mu.Unlock()
}

// Tail 返回最近 tail 个标题的副本
func (c *coveredList) Tail() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := 0
	if len(c.titles) > c.tail {
		start = len(c.titles) - c.tail
	}
	out := make([]string, len(c.titles)-start)
	copy(out, c.titles[start:])
	return out
}

// ControllerConfig 扩写控制配置
type ControllerConfig struct {
	TargetWords   int
	MaxIterations int
	Concurrency   int
	CoveredTail   int
}

// Controller 扩写控制器：驱动首轮全量起草与缺口驱动的扩写循环。
// 词数只增不减；迭代受上限约束，防止无界的服务商开销。
type Controller struct {
	writer *Writer
	cfg    ControllerConfig
}

func NewController(writer *Writer, cfg ControllerConfig) *Controller {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 20
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Controller{writer: writer, cfg: cfg}
}

// FirstPass 对所有叶子节点各起草一次。
// 节点级生成失败写入占位内容并记入诊断，不中断全程；
// 检索类失败与取消按致命处理。
func (c *Controller) FirstPass(ctx context.Context, outline *entity.Outline, ledger *wordLedger, covered *coveredList, diag *Diagnostics, onNodeDone func()) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for _, leaf := range outline.Leaves() {
		leaf := leaf
		if err := leaf.BeginDraft(); err != nil {
			return err
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := c.writer.Draft(gctx, DraftRequest{
				Topic:    outline.Topic,
				Node:     leaf,
				Covered:  covered.Tail(),
				MinWords: leaf.TargetWords,
				MaxWords: leaf.TargetWords + leaf.TargetWords/2,
			})

			var genErr *GenerationError
			switch {
			case err == nil:
				leaf.AppendContent(result.Content)
				leaf.SetGrounding(result.Context.Citations())
			case errors.As(err, &genErr):
				leaf.AppendContent(PlaceholderNotice)
				diag.AddGenerationError(NodeFailure{
					NodeID:   genErr.NodeID,
					Title:    genErr.Title,
					Attempts: genErr.Attempts,
					Message:  genErr.Error(),
				})
			default:
				return err
			}

			if err := leaf.CompleteDraft(); err != nil {
				return err
			}
			ledger.Add(leaf.WordCount())
			covered.Append(leaf.Title)
			if onNodeDone != nil {
				onNodeDone()
			}
			return nil
		})
	}

	return g.Wait()
}

// ExpandLoop 缺口驱动的扩写循环。
// 每轮选取完成度最低的叶子（实际/目标比值最小，同值取文档顺序靠前者）扩写一次，
// 追加而不替换既有内容，直到缺口归零或达到迭代上限。
// 达到上限仍有缺口时返回 ErrBudgetExceeded（非致命），缺口记入诊断。
func (c *Controller) ExpandLoop(ctx context.Context, outline *entity.Outline, ledger *wordLedger, covered *coveredList, diag *Diagnostics, onRound func()) error {
	log := logger.FromContext(ctx)

	for round := 0; round < c.cfg.MaxIterations; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		deficit := c.cfg.TargetWords - ledger.Total()
		if deficit <= 0 {
			return nil
		}

		target := selectExpansionNode(outline)
		if target == nil {
			break
		}

		diag.ExpansionRounds = round + 1
		if err := target.BeginExpand(); err != nil {
			return err
		}

		minWords := deficit
		if minWords > target.TargetWords {
			minWords = target.TargetWords
		}
		if minWords < 100 {
			minWords = 100
		}

		before := target.WordCount()
		result, err := c.writer.Draft(ctx, DraftRequest{
			Topic:    outline.Topic,
			Node:     target,
			Covered:  covered.Tail(),
			Extend:   true,
			MinWords: minWords,
			MaxWords: minWords * 2,
		})

		var genErr *GenerationError
		switch {
		case err == nil:
			target.AppendContent(result.Content)
			target.SetGrounding(result.Context.Citations())
		case errors.As(err, &genErr):
			diag.AddGenerationError(NodeFailure{
				NodeID:   genErr.NodeID,
				Title:    genErr.Title,
				Attempts: genErr.Attempts,
				Message:  genErr.Error(),
			})
		default:
			return err
		}

		if err := target.CompleteDraft(); err != nil {
			return err
		}
		ledger.Add(target.WordCount() - before)

		log.Info("expansion round finished",
			"round", round+1,
			"node_id", target.ID,
			"added_words", target.WordCount()-before,
			"total_words", ledger.Total(),
		)
		if onRound != nil {
			onRound()
		}
	}

	if shortfall := c.cfg.TargetWords - ledger.Total(); shortfall > 0 {
		diag.BudgetExceeded = true
		diag.BudgetShortfall = shortfall
		return ErrBudgetExceeded
	}
	return nil
}

// selectExpansionNode 确定性选择策略：实际/目标比值最低者优先，
// 同值按大纲文档顺序取先出现的节点。
func selectExpansionNode(outline *entity.Outline) *entity.OutlineNode {
	var best *entity.OutlineNode
	for _, leaf := range outline.Leaves() {
		if leaf.TargetWords <= 0 {
			continue
		}
		if best == nil || leaf.Ratio() < best.Ratio() {
			best = leaf
		}
	}
	return best
}
