package handbook

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestService(gen Generator, target int) *Service {
	engine := sampledEngine()
	planner := NewPlanner(engine, gen, PlannerConfig{
		TargetWords:       target,
		MaxGroundingChars: 10000,
	})
	writer := NewWriter(engine, gen, WriterConfig{
		MaxGroundingChars: 10000,
		MaxRetries:        2,
		Backoff:           fastBackoff(),
	})
	cfg := ControllerConfig{TargetWords: target, MaxIterations: 5}
	return NewService(planner, NewController(writer, cfg), cfg)
}

func TestService_Run_ProducesAssembledDocument(t *testing.T) {
	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			return `
Part 1: Basics
Chapter 1: Core
Section 1.1: Alpha (20 words)
Section 1.2: Beta (20 words)
`, nil
		},
		writeFn: func(req WriteRequest) (string, error) {
			return words(25) + " grounded claim [source: guide.pdf, p.1].", nil
		},
	}
	svc := newTestService(gen, 40)

	var stages []string
	doc, diag, err := svc.Run(context.Background(), RunParams{
		JobID:       "job-1",
		Topic:       "Consensus",
		TargetWords: 40,
	}, func(p int, stage string) { stages = append(stages, stage) })
	assert.NoError(t, err)

	assert.Equal(t, "job-1", doc.JobID)
	assert.Equal(t, "Consensus", doc.Topic)
	assert.Contains(t, doc.Content, "# Consensus")
	assert.Contains(t, doc.Content, "## Table of Contents")
	assert.Contains(t, doc.Content, "### Alpha")
	assert.Contains(t, doc.Content, "### Beta")
	assert.Contains(t, doc.TableOfContents, "    - Alpha")
	assert.Equal(t, doc.WordCount, diag.TotalWords)
	assert.Equal(t, []string{"guide.pdf"}, []string(doc.SourceDocuments))

	assert.Contains(t, stages, "planning")
	assert.Contains(t, stages, "drafting")
	assert.Contains(t, stages, "expanding")
	assert.Contains(t, stages, "validating")
	assert.Contains(t, stages, "assembling")
}

func TestService_Run_ConcurrentDraftProgressIsSerialized(t *testing.T) {
	const sections = 16

	var outlineText strings.Builder
	outlineText.WriteString("Chapter 1: Core\n")
	for i := 1; i <= sections; i++ {
		fmt.Fprintf(&outlineText, "Section 1.%d: Topic %d (10 words)\n", i, i)
	}

	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			return outlineText.String(), nil
		},
		writeFn: func(req WriteRequest) (string, error) {
			return words(12), nil
		},
	}
	engine := sampledEngine()
	planner := NewPlanner(engine, gen, PlannerConfig{TargetWords: 160, MaxGroundingChars: 10000})
	writer := NewWriter(engine, gen, WriterConfig{MaxGroundingChars: 10000, MaxRetries: 2, Backoff: fastBackoff()})
	cfg := ControllerConfig{TargetWords: 160, MaxIterations: 5, Concurrency: 8}
	svc := NewService(planner, NewController(writer, cfg), cfg)

	// 回调由服务端串行化，这里的记录无需自己加锁
	var drafting []int
	_, _, err := svc.Run(context.Background(), RunParams{
		JobID:       "job-c",
		Topic:       "Consensus",
		TargetWords: 160,
	}, func(p int, stage string) {
		if stage == "drafting" {
			drafting = append(drafting, p)
		}
	})
	assert.NoError(t, err)

	// 初始上报 + 每个叶子完成各一次；完成计数不丢不重
	if assert.Len(t, drafting, sections+1) {
		assert.Equal(t, 10, drafting[0])
		assert.Equal(t, 70, drafting[sections])
		for i := 1; i < len(drafting); i++ {
			assert.Equal(t, 10+i*60/sections, drafting[i])
		}
	}
}

func TestService_Run_ToleratesBudgetShortfall(t *testing.T) {
	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			return "Chapter 1: Core\nSection 1.1: Alpha (1000 words)", nil
		},
		writeFn: func(req WriteRequest) (string, error) {
			return words(10), nil
		},
	}
	svc := newTestService(gen, 1000)

	doc, diag, err := svc.Run(context.Background(), RunParams{
		JobID:       "job-2",
		Topic:       "Consensus",
		TargetWords: 1000,
	}, nil)
	assert.NoError(t, err)

	assert.NotNil(t, doc)
	assert.True(t, diag.BudgetExceeded)
	assert.Positive(t, diag.BudgetShortfall)
	assert.Equal(t, 5, diag.ExpansionRounds)
}

func TestService_Run_StripsOrphanCitationsBeforeAssembly(t *testing.T) {
	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			return "Chapter 1: Core\nSection 1.1: Alpha (10 words)", nil
		},
		writeFn: func(req WriteRequest) (string, error) {
			return words(15) + " real [source: guide.pdf, p.1] fake [source: nowhere.pdf, p.99].", nil
		},
	}
	svc := newTestService(gen, 10)

	doc, diag, err := svc.Run(context.Background(), RunParams{
		JobID:       "job-3",
		Topic:       "Consensus",
		TargetWords: 10,
	}, nil)
	assert.NoError(t, err)

	assert.Contains(t, doc.Content, "[source: guide.pdf, p.1]")
	assert.NotContains(t, doc.Content, "nowhere.pdf")
	assert.NotEmpty(t, diag.DroppedCitations)
	assert.NotContains(t, doc.SourceDocuments, "nowhere.pdf")
}

func TestService_Run_PlanningFailureIsFatal(t *testing.T) {
	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			return "no outline here", nil
		},
	}
	svc := newTestService(gen, 100)

	doc, _, err := svc.Run(context.Background(), RunParams{
		JobID:       "job-4",
		Topic:       "Consensus",
		TargetWords: 100,
	}, nil)
	assert.ErrorIs(t, err, ErrOutlinePlanning)
	assert.Nil(t, doc)
}

func TestService_Run_CancelledContextAborts(t *testing.T) {
	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			return "Chapter 1: Core\nSection 1.1: Alpha (10 words)", nil
		},
		writeFn: func(req WriteRequest) (string, error) {
			return words(20), nil
		},
	}
	svc := newTestService(gen, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, _, err := svc.Run(ctx, RunParams{JobID: "job-5", Topic: "Consensus", TargetWords: 10}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, doc)
}
