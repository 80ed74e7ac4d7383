package retrieval

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0, 0}
	}
	return out, nil
}

// fakeVectorRepo 内存向量仓库，记录最后一次检索参数。
type fakeVectorRepo struct {
	rows       []*VectorFragment
	results    []*VectorSearchResult
	lastSearch *VectorSearchParams
}

func (f *fakeVectorRepo) EnsureFragmentsCollection(ctx context.Context) error { return nil }

func (f *fakeVectorRepo) SearchFragments(ctx context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error) {
	f.lastSearch = params
	return f.results, nil
}

func (f *fakeVectorRepo) ListFragments(ctx context.Context, afterID string, limit int) ([]*VectorFragment, error) {
	start := 0
	if afterID != "" {
		for i, row := range f.rows {
			if row.ID == afterID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	if start >= len(f.rows) {
		return nil, nil
	}
	return f.rows[start:end], nil
}

func (f *fakeVectorRepo) CountFragments(ctx context.Context) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeVectorRepo) InsertFragments(ctx context.Context, fragments []*VectorFragment) error {
	f.rows = append(f.rows, fragments...)
	return nil
}

func (f *fakeVectorRepo) DeleteByDocument(ctx context.Context, document string) error {
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.DocumentName != document {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

func TestEngine_Query_ClampsTopK(t *testing.T) {
	repo := &fakeVectorRepo{
		rows:    []*VectorFragment{{ID: "f1", TextContent: "x"}},
		results: []*VectorSearchResult{{ID: "f1", DocumentName: "a.pdf", PageNumber: 1, TextContent: "x"}},
	}
	e := NewEngine(stubEmbedder{}, repo)

	_, err := e.Query(context.Background(), QueryInput{Query: "raft", TopK: 1})
	assert.NoError(t, err)
	assert.Equal(t, 3, repo.lastSearch.TopK)

	_, err = e.Query(context.Background(), QueryInput{Query: "raft", TopK: 50})
	assert.NoError(t, err)
	assert.Equal(t, 10, repo.lastSearch.TopK)
}

func TestEngine_Query_MapsResultsToFragments(t *testing.T) {
	repo := &fakeVectorRepo{
		rows: []*VectorFragment{{ID: "f1"}},
		results: []*VectorSearchResult{
			{ID: "f1", Score: 0.92, DocumentName: "guide.pdf", PageNumber: 7, TextContent: "leader election"},
			{ID: "f2", Score: 0.81, DocumentName: "paper.pdf", PageNumber: 2, TextContent: "log replication"},
		},
	}
	e := NewEngine(stubEmbedder{}, repo)

	frags, err := e.Query(context.Background(), QueryInput{Query: "raft"})
	assert.NoError(t, err)

	if assert.Len(t, frags, 2) {
		assert.Equal(t, "guide.pdf", frags[0].SourceDocument)
		assert.Equal(t, 7, frags[0].PageNumber)
		assert.Equal(t, "leader election", frags[0].Text)
		assert.InDelta(t, 0.92, frags[0].Score, 1e-6)
		assert.Equal(t, "paper.pdf", frags[1].SourceDocument)
	}
}

func TestEngine_Query_EmptyCorpusYieldsEmptyResult(t *testing.T) {
	e := NewEngine(stubEmbedder{}, &fakeVectorRepo{})

	frags, err := e.Query(context.Background(), QueryInput{Query: "raft"})
	assert.NoError(t, err)
	assert.Empty(t, frags)
}

func TestEngine_Query_ZeroMatchesOnPopulatedCorpusIsError(t *testing.T) {
	repo := &fakeVectorRepo{rows: []*VectorFragment{{ID: "f1", TextContent: "x"}}}
	e := NewEngine(stubEmbedder{}, repo)

	_, err := e.Query(context.Background(), QueryInput{Query: "unrelated"})
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestEngine_Query_RequiresQueryText(t *testing.T) {
	e := NewEngine(stubEmbedder{}, &fakeVectorRepo{})

	_, err := e.Query(context.Background(), QueryInput{Query: "   "})
	assert.Error(t, err)
}

func TestEngine_Disabled(t *testing.T) {
	var e *Engine
	assert.False(t, e.Enabled())

	_, err := e.Query(context.Background(), QueryInput{Query: "raft"})
	assert.ErrorIs(t, err, ErrVectorDisabled)

	e = NewEngine(nil, nil)
	assert.False(t, e.Enabled())
}
