package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"handbook-ai-api/internal/domain/entity"
)

const (
	minTopK = 3
	maxTopK = 10
)

// Engine 向量检索引擎
type Engine struct {
	embedder embedding.Embedder
	vector   VectorRepository
}

func NewEngine(embedder embedding.Embedder, vectorRepo VectorRepository) *Engine {
	return &Engine{
		embedder: embedder,
		vector:   vectorRepo,
	}
}

func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.vector != nil
}

func (e *Engine) ensureReady(ctx context.Context) error {
	if e == nil || e.vector == nil {
		return ErrVectorDisabled
	}
	return e.vector.EnsureFragmentsCollection(ctx)
}

// QueryInput 检索输入
type QueryInput struct {
	Query string
	TopK  int

	// Document 非空时限定来源文档。
	Document string
}

// Query 按语义相似度检索片段，按得分降序返回。
// 语料库为空时返回合法的空结果；零命中但语料非空说明存储异常，返回 ErrNoMatches。
func (e *Engine) Query(ctx context.Context, in QueryInput) ([]*entity.Fragment, error) {
	if !e.Enabled() {
		return nil, ErrVectorDisabled
	}
	if err := e.ensureReady(ctx); err != nil {
		return nil, err
	}

	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if in.TopK < minTopK {
		in.TopK = minTopK
	}
	if in.TopK > maxTopK {
		in.TopK = maxTopK
	}

	vec, err := e.embedQuery(ctx, in.Query)
	if err != nil {
		return nil, err
	}

	results, err := e.vector.SearchFragments(ctx, &VectorSearchParams{
		QueryVector: vec,
		TopK:        in.TopK,
		Document:    in.Document,
	})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		count, countErr := e.vector.CountFragments(ctx)
		if countErr != nil {
			return nil, countErr
		}
		if count == 0 {
			return []*entity.Fragment{}, nil
		}
		return nil, ErrNoMatches
	}

	out := make([]*entity.Fragment, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, &entity.Fragment{
			ID:             r.ID,
			SourceDocument: r.DocumentName,
			PageNumber:     r.PageNumber,
			Text:           r.TextContent,
			EmbeddingRef:   r.ID,
			Score:          float64(r.Score),
		})
	}
	return out, nil
}

func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if e == nil || e.embedder == nil {
		return nil, ErrVectorDisabled
	}
	v64, err := e.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(v64) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	vec := v64[0]
	out := make([]float32, 0, len(vec))
	for _, x := range vec {
		out = append(out, float32(x))
	}
	return out, nil
}
