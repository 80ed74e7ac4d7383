package handbook

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"handbook-ai-api/internal/domain/entity"
)

// words 生成 n 个词的文本
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func plannedOutline(targets ...int) *entity.Outline {
	o := &entity.Outline{
		Topic: "Topic",
		Nodes: []*entity.OutlineNode{
			{ID: "p1", Level: entity.LevelPart, Title: "Part", Order: 0, Status: entity.NodeStatusPlanned},
			{ID: "c1", Level: entity.LevelChapter, Title: "Chapter", ParentID: "p1", Order: 0, Status: entity.NodeStatusPlanned},
		},
	}
	for i, target := range targets {
		o.Nodes = append(o.Nodes, &entity.OutlineNode{
			ID:          fmt.Sprintf("s%d", i+1),
			Level:       entity.LevelSection,
			Title:       fmt.Sprintf("Section %d", i+1),
			ParentID:    "c1",
			Order:       i,
			TargetWords: target,
			Status:      entity.NodeStatusPlanned,
		})
	}
	return o
}

func newTestController(gen Generator, cfg ControllerConfig) *Controller {
	writer := NewWriter(groundedEngine(), gen, WriterConfig{
		MaxGroundingChars: 10000,
		MaxRetries:        2,
		Backoff:           fastBackoff(),
	})
	return NewController(writer, cfg)
}

func TestController_FirstPass_DraftsEveryLeaf(t *testing.T) {
	gen := &scriptedGenerator{
		writeFn: func(req WriteRequest) (string, error) {
			return words(50), nil
		},
	}
	c := newTestController(gen, ControllerConfig{TargetWords: 150})
	outline := plannedOutline(100, 100, 100)

	ledger := &wordLedger{}
	covered := newCoveredList(20)
	diag := &Diagnostics{}

	done := 0
	err := c.FirstPass(context.Background(), outline, ledger, covered, diag, func() { done++ })
	assert.NoError(t, err)

	assert.Equal(t, 3, done)
	assert.Equal(t, 150, ledger.Total())
	assert.Empty(t, diag.GenerationErrors)
	for _, leaf := range outline.Leaves() {
		assert.Equal(t, entity.NodeStatusDrafted, leaf.Status)
		assert.Equal(t, 50, leaf.WordCount())
	}
	assert.Len(t, covered.Tail(), 3)
}

func TestController_FirstPass_PlaceholderOnExhaustedNode(t *testing.T) {
	gen := &scriptedGenerator{
		writeFn: func(req WriteRequest) (string, error) {
			if req.SectionTitle == "Section 2" {
				return "", fmt.Errorf("status code: 400 invalid request")
			}
			return words(100), nil
		},
	}
	c := newTestController(gen, ControllerConfig{TargetWords: 300})
	outline := plannedOutline(100, 100, 100)

	ledger := &wordLedger{}
	diag := &Diagnostics{}
	err := c.FirstPass(context.Background(), outline, ledger, newCoveredList(20), diag, nil)
	assert.NoError(t, err)

	leaves := outline.Leaves()
	assert.Equal(t, PlaceholderNotice, leaves[1].Content)
	assert.Equal(t, entity.NodeStatusDrafted, leaves[1].Status)

	if assert.Len(t, diag.GenerationErrors, 1) {
		assert.Equal(t, "s2", diag.GenerationErrors[0].NodeID)
		assert.Equal(t, 1, diag.GenerationErrors[0].Attempts)
	}
}

func TestController_ExpandLoop_SelectsLowestCompletionRatio(t *testing.T) {
	var expanded []string
	gen := &scriptedGenerator{
		writeFn: func(req WriteRequest) (string, error) {
			if req.Extend {
				expanded = append(expanded, req.SectionTitle)
				return words(40), nil
			}
			switch req.SectionTitle {
			case "Section 1":
				return words(80), nil
			case "Section 2":
				return words(100), nil
			default:
				return words(90), nil
			}
		},
	}
	c := newTestController(gen, ControllerConfig{TargetWords: 300, MaxIterations: 5})
	outline := plannedOutline(100, 100, 100)

	ledger := &wordLedger{}
	covered := newCoveredList(20)
	diag := &Diagnostics{}
	assert.NoError(t, c.FirstPass(context.Background(), outline, ledger, covered, diag, nil))
	assert.Equal(t, 270, ledger.Total())

	err := c.ExpandLoop(context.Background(), outline, ledger, covered, diag, nil)
	assert.NoError(t, err)

	// 完成度最低的 Section 1（80/100）被选中，一轮扩写即补齐缺口
	assert.Equal(t, []string{"Section 1"}, expanded)
	assert.Equal(t, 310, ledger.Total())
	assert.Equal(t, 1, diag.ExpansionRounds)
	assert.False(t, diag.BudgetExceeded)
}

func TestController_ExpandLoop_TieBreaksToDocumentOrder(t *testing.T) {
	var expanded []string
	gen := &scriptedGenerator{
		writeFn: func(req WriteRequest) (string, error) {
			if req.Extend {
				expanded = append(expanded, req.SectionTitle)
				return words(100), nil
			}
			return words(50), nil
		},
	}
	c := newTestController(gen, ControllerConfig{TargetWords: 200, MaxIterations: 5})
	outline := plannedOutline(100, 100)

	ledger := &wordLedger{}
	covered := newCoveredList(20)
	diag := &Diagnostics{}
	assert.NoError(t, c.FirstPass(context.Background(), outline, ledger, covered, diag, nil))

	assert.NoError(t, c.ExpandLoop(context.Background(), outline, ledger, covered, diag, nil))

	if assert.NotEmpty(t, expanded) {
		assert.Equal(t, "Section 1", expanded[0])
	}
}

func TestController_ExpandLoop_AppendsWithoutReplacing(t *testing.T) {
	gen := &scriptedGenerator{
		writeFn: func(req WriteRequest) (string, error) {
			if req.Extend {
				return "appended expansion text", nil
			}
			return "original draft text", nil
		},
	}
	c := newTestController(gen, ControllerConfig{TargetWords: 100, MaxIterations: 1})
	outline := plannedOutline(100)

	ledger := &wordLedger{}
	covered := newCoveredList(20)
	diag := &Diagnostics{}
	assert.NoError(t, c.FirstPass(context.Background(), outline, ledger, covered, diag, nil))

	_ = c.ExpandLoop(context.Background(), outline, ledger, covered, diag, nil)

	leaf := outline.Leaves()[0]
	assert.True(t, strings.HasPrefix(leaf.Content, "original draft text"))
	assert.Contains(t, leaf.Content, "appended expansion text")
}

func TestController_ExpandLoop_IterationCapReturnsBudgetExceeded(t *testing.T) {
	gen := &scriptedGenerator{
		writeFn: func(req WriteRequest) (string, error) {
			if req.Extend {
				// 扩写不产出新词，缺口无法收敛
				return "", nil
			}
			return words(10), nil
		},
	}
	c := newTestController(gen, ControllerConfig{TargetWords: 500, MaxIterations: 3})
	outline := plannedOutline(100, 100)

	ledger := &wordLedger{}
	covered := newCoveredList(20)
	diag := &Diagnostics{}
	assert.NoError(t, c.FirstPass(context.Background(), outline, ledger, covered, diag, nil))

	err := c.ExpandLoop(context.Background(), outline, ledger, covered, diag, nil)
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	assert.True(t, diag.BudgetExceeded)
	assert.Equal(t, 480, diag.BudgetShortfall)
	assert.Equal(t, 3, diag.ExpansionRounds)
	assert.Equal(t, 20, ledger.Total())
}

func TestController_ExpandLoop_NoopWhenTargetMet(t *testing.T) {
	gen := &scriptedGenerator{
		writeFn: func(req WriteRequest) (string, error) {
			assert.False(t, req.Extend, "no expansion call expected once the target is met")
			return words(120), nil
		},
	}
	c := newTestController(gen, ControllerConfig{TargetWords: 200, MaxIterations: 5})
	outline := plannedOutline(100, 100)

	ledger := &wordLedger{}
	covered := newCoveredList(20)
	diag := &Diagnostics{}
	assert.NoError(t, c.FirstPass(context.Background(), outline, ledger, covered, diag, nil))

	assert.NoError(t, c.ExpandLoop(context.Background(), outline, ledger, covered, diag, nil))
	assert.Zero(t, diag.ExpansionRounds)
}
