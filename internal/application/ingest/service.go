package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"handbook-ai-api/internal/application/retrieval"
	"handbook-ai-api/pkg/logger"
)

// ErrNoChunks 表示文档没有可用正文，无片段可入库。
var ErrNoChunks = errors.New("document produced no chunks")

// Service 语料摄取服务：切分、向量化并写入向量库。
type Service struct {
	chunker *Chunker
	indexer *retrieval.Indexer
}

func NewService(chunker *Chunker, indexer *retrieval.Indexer) *Service {
	return &Service{
		chunker: chunker,
		indexer: indexer,
	}
}

// IngestDocument 摄取一份来源文档，返回写入的片段数。
// 重复摄取同名文档会替换其全部片段。
func (s *Service) IngestDocument(ctx context.Context, document string, pages []Page) (int, error) {
	if s == nil || s.chunker == nil || s.indexer == nil {
		return 0, fmt.Errorf("ingest service not configured")
	}
	document = strings.TrimSpace(document)
	if document == "" {
		return 0, fmt.Errorf("document name is required")
	}

	chunks := s.chunker.Split(pages)
	if len(chunks) == 0 {
		return 0, ErrNoChunks
	}

	count, err := s.indexer.IndexDocument(ctx, document, Fragments(document, chunks))
	if err != nil {
		return 0, err
	}

	logger.FromContext(ctx).Info("document ingested",
		"document", document,
		"pages", len(pages),
		"fragments", count,
	)
	return count, nil
}

// RemoveDocument 从语料库移除一份来源文档
func (s *Service) RemoveDocument(ctx context.Context, document string) error {
	if s == nil || s.indexer == nil {
		return fmt.Errorf("ingest service not configured")
	}
	document = strings.TrimSpace(document)
	if document == "" {
		return fmt.Errorf("document name is required")
	}
	if err := s.indexer.RemoveDocument(ctx, document); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("document removed", "document", document)
	return nil
}
