package handbook

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"handbook-ai-api/internal/application/retrieval"
)

func sampledEngine() *retrieval.Engine {
	return retrieval.NewEngine(testEmbedder{}, &testVectorRepo{
		rows: []*retrieval.VectorFragment{
			{ID: "f1", DocumentName: "guide.pdf", PageNumber: 1, TextContent: "consensus and replication overview"},
			{ID: "f2", DocumentName: "guide.pdf", PageNumber: 2, TextContent: "leader election in depth"},
		},
		results: []*retrieval.VectorSearchResult{
			{ID: "f1", Score: 0.9, DocumentName: "guide.pdf", PageNumber: 1, TextContent: "consensus and replication overview"},
			{ID: "f2", Score: 0.8, DocumentName: "guide.pdf", PageNumber: 2, TextContent: "leader election in depth"},
		},
		count: 2,
	})
}

func plannerConfig() PlannerConfig {
	return PlannerConfig{
		TargetWords:       1000,
		MaxGroundingChars: 10000,
	}
}

func TestPlanner_Plan_ParsesAndScalesOutline(t *testing.T) {
	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			assert.Equal(t, "Consensus", req.Topic)
			assert.Equal(t, 1000, req.TargetWords)
			assert.Contains(t, req.SourcesBlock, "guide.pdf")
			return `
Part 1: Basics
Chapter 1: Elections
Section 1.1: Terms (100 words)
Section 1.2: Votes (300 words)
`, nil
		},
	}
	p := NewPlanner(sampledEngine(), gen, plannerConfig())

	outline, err := p.Plan(context.Background(), "Consensus")
	assert.NoError(t, err)

	assert.Equal(t, 1, gen.planCalls)
	assert.GreaterOrEqual(t, outline.TargetTotal(), 1000)
	assert.Len(t, outline.Leaves(), 2)
}

func TestPlanner_Plan_RetriesOnceWithCorrective(t *testing.T) {
	var correctives []string
	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			correctives = append(correctives, req.Corrective)
			if len(correctives) == 1 {
				return "I cannot produce an outline, sorry.", nil
			}
			return "Chapter 1: Recovered\nSection 1.1: Fixed (500 words)", nil
		},
	}
	p := NewPlanner(sampledEngine(), gen, plannerConfig())

	outline, err := p.Plan(context.Background(), "Consensus")
	assert.NoError(t, err)
	assert.Len(t, outline.Leaves(), 1)

	if assert.Len(t, correctives, 2) {
		assert.Empty(t, correctives[0])
		assert.Contains(t, correctives[1], "no section lines")
	}
}

func TestPlanner_Plan_FailsAfterSecondUnparseableOutline(t *testing.T) {
	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			return "still not an outline", nil
		},
	}
	p := NewPlanner(sampledEngine(), gen, plannerConfig())

	_, err := p.Plan(context.Background(), "Consensus")
	assert.ErrorIs(t, err, ErrOutlinePlanning)
	assert.Equal(t, 2, gen.planCalls)
}

func TestPlanner_Plan_EmptyCorpusIsFatal(t *testing.T) {
	engine := retrieval.NewEngine(testEmbedder{}, &testVectorRepo{})
	gen := &scriptedGenerator{
		planFn: func(req PlanRequest) (string, error) {
			return "", fmt.Errorf("should not be called")
		},
	}
	p := NewPlanner(engine, gen, plannerConfig())

	_, err := p.Plan(context.Background(), "Consensus")
	assert.ErrorIs(t, err, retrieval.ErrEmptyCorpus)
	assert.Zero(t, gen.planCalls)
}
