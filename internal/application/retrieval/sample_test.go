package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicKeywords_LowercasesAndDedups(t *testing.T) {
	kws := TopicKeywords("Raft Raft consensus and log LOG replication in Go")

	assert.Equal(t, []string{"raft", "consensus", "replication"}, kws)
}

func TestTopicKeywords_CapsAtTwelve(t *testing.T) {
	topic := "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima mike november oscar"

	kws := TopicKeywords(topic)
	if assert.Len(t, kws, 12) {
		assert.Equal(t, "alpha", kws[0])
		assert.Equal(t, "lima", kws[11])
		assert.NotContains(t, kws, "mike")
	}
}

func TestPlannerSample_EmptyCorpusIsError(t *testing.T) {
	e := NewEngine(stubEmbedder{}, &fakeVectorRepo{})

	_, err := e.PlannerSample(context.Background(), SampleParams{Topic: "raft"})
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestPlannerSample_RoundRobinAcrossDocuments(t *testing.T) {
	repo := &fakeVectorRepo{rows: []*VectorFragment{
		{ID: "a1", DocumentName: "alpha.pdf", PageNumber: 1, TextContent: "raft raft raft"},
		{ID: "a2", DocumentName: "alpha.pdf", PageNumber: 2, TextContent: "raft raft"},
		{ID: "a3", DocumentName: "alpha.pdf", PageNumber: 3, TextContent: "raft"},
		{ID: "b1", DocumentName: "beta.pdf", PageNumber: 1, TextContent: "raft consensus"},
		{ID: "b2", DocumentName: "beta.pdf", PageNumber: 2, TextContent: "nothing relevant"},
	}}
	e := NewEngine(stubEmbedder{}, repo)

	sample, err := e.PlannerSample(context.Background(), SampleParams{
		Topic:       "raft consensus",
		PerDocument: 2,
		MaxTotal:    10,
	})
	assert.NoError(t, err)

	// 每文档取分高的 2 条，跨文档轮询：alpha、beta 交替
	if assert.Len(t, sample, 4) {
		assert.Equal(t, "alpha.pdf", sample[0].SourceDocument)
		assert.Equal(t, "a1", sample[0].ID)
		assert.Equal(t, "beta.pdf", sample[1].SourceDocument)
		assert.Equal(t, "b1", sample[1].ID)
		assert.Equal(t, "alpha.pdf", sample[2].SourceDocument)
		assert.Equal(t, "a2", sample[2].ID)
		assert.Equal(t, "beta.pdf", sample[3].SourceDocument)
	}
}

func TestPlannerSample_RespectsMaxTotal(t *testing.T) {
	var rows []*VectorFragment
	for i := 0; i < 30; i++ {
		rows = append(rows, &VectorFragment{
			ID:           fmt.Sprintf("f%02d", i),
			DocumentName: "solo.pdf",
			PageNumber:   i + 1,
			TextContent:  fmt.Sprintf("fragment %d about consensus", i),
		})
	}
	e := NewEngine(stubEmbedder{}, &fakeVectorRepo{rows: rows})

	sample, err := e.PlannerSample(context.Background(), SampleParams{
		Topic:       "consensus",
		PerDocument: 30,
		MaxTotal:    5,
	})
	assert.NoError(t, err)
	assert.Len(t, sample, 5)
}

func TestPlannerSample_DedupsByFingerprint(t *testing.T) {
	repo := &fakeVectorRepo{rows: []*VectorFragment{
		{ID: "f1", DocumentName: "a.pdf", PageNumber: 1, TextContent: "identical consensus text"},
		{ID: "f2", DocumentName: "a.pdf", PageNumber: 2, TextContent: "Identical   consensus text"},
	}}
	e := NewEngine(stubEmbedder{}, repo)

	sample, err := e.PlannerSample(context.Background(), SampleParams{Topic: "consensus"})
	assert.NoError(t, err)
	assert.Len(t, sample, 1)
}

func TestKeywordScore_CountsOccurrences(t *testing.T) {
	score := keywordScore("Raft is a consensus algorithm. raft elects a leader.", []string{"raft", "leader"})
	assert.Equal(t, float64(3), score)

	assert.Zero(t, keywordScore("anything", nil))
}
