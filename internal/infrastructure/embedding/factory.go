package embedding

import (
	"context"
	"fmt"

	"handbook-ai-api/internal/config"

	"github.com/cloudwego/eino/components/embedding"
)

// NewEmbedder 按配置选择向量化实现
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case "", "hash":
		return NewHashEmbedder(cfg.Dimension), nil
	case "openai":
		return NewEinoEmbedder(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
