package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/pkg/metrics"
)

const defaultEmbeddingBatch = 32

// Indexer 负责片段向量化与入库
type Indexer struct {
	embedder embedding.Embedder
	vector   VectorRepository

	embeddingBatchSize int
}

func NewIndexer(embedder embedding.Embedder, vectorRepo VectorRepository, embeddingBatchSize int) *Indexer {
	bs := embeddingBatchSize
	if bs <= 0 {
		bs = defaultEmbeddingBatch
	}
	return &Indexer{
		embedder:           embedder,
		vector:             vectorRepo,
		embeddingBatchSize: bs,
	}
}

func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.vector != nil
}

func (i *Indexer) ensureReady(ctx context.Context) error {
	if i == nil || i.vector == nil {
		return ErrVectorDisabled
	}
	return i.vector.EnsureFragmentsCollection(ctx)
}

// IndexDocument 将同一来源文档的片段向量化后入库。
// 重新入库前先删除该文档的旧片段，保证重复摄取幂等；
// 批内按指纹去重。返回实际写入的片段数。
func (i *Indexer) IndexDocument(ctx context.Context, document string, fragments []*entity.Fragment) (int, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return 0, fmt.Errorf("document name is required")
	}
	if !i.Enabled() {
		return 0, ErrVectorDisabled
	}
	if err := i.ensureReady(ctx); err != nil {
		return 0, err
	}

	if err := i.vector.DeleteByDocument(ctx, document); err != nil {
		return 0, err
	}
	if len(fragments) == 0 {
		// 空文档只做清理，不写索引
		return 0, nil
	}

	seen := make(map[string]struct{}, len(fragments))
	embedInputs := make([]string, 0, len(fragments))
	rows := make([]*VectorFragment, 0, len(fragments))

	for _, frag := range fragments {
		if frag == nil || strings.TrimSpace(frag.Text) == "" {
			continue
		}
		fp := frag.Fingerprint
		if fp == "" {
			fp = entity.Fingerprint(frag.Text)
		}
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}

		embedInputs = append(embedInputs, frag.Text)
		rows = append(rows, &VectorFragment{
			ID:           frag.ID,
			DocumentName: document,
			PageNumber:   frag.PageNumber,
			Fingerprint:  fp,
			TextContent:  frag.Text,
		})
	}

	if len(rows) == 0 {
		return 0, nil
	}

	vectors, err := i.embedBatch(ctx, embedInputs)
	if err != nil {
		return 0, err
	}
	for idx := range rows {
		rows[idx].Vector = vectors[idx]
	}

	if err := i.vector.InsertFragments(ctx, rows); err != nil {
		return 0, err
	}

	metrics.FragmentsIngestedTotal.Add(float64(len(rows)))
	return len(rows), nil
}

// RemoveDocument 删除某来源文档的全部片段
func (i *Indexer) RemoveDocument(ctx context.Context, document string) error {
	document = strings.TrimSpace(document)
	if document == "" {
		return fmt.Errorf("document name is required")
	}
	if !i.Enabled() {
		return ErrVectorDisabled
	}
	if err := i.ensureReady(ctx); err != nil {
		return err
	}
	return i.vector.DeleteByDocument(ctx, document)
}

func (i *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if i == nil || i.embedder == nil {
		return nil, ErrVectorDisabled
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += i.embeddingBatchSize {
		end := start + i.embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		v64, err := i.embedder.EmbedStrings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		for _, vec := range v64 {
			f32 := make([]float32, 0, len(vec))
			for _, x := range vec {
				f32 = append(f32, float32(x))
			}
			out = append(out, f32)
		}
	}
	return out, nil
}
