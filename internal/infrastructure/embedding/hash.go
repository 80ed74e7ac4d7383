package embedding

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
)

const hashTokenCap = 2000

// HashEmbedder 基于词元哈希的确定性向量化实现。
// 不依赖外部服务，相同文本总是产生相同向量，适用于离线环境与测试。
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder 创建哈希 Embedder
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 1536
	}
	return &HashEmbedder{dim: dim}
}

var _ embedding.Embedder = (*HashEmbedder)(nil)

// Dimension 返回向量维度
func (e *HashEmbedder) Dimension() int {
	return e.dim
}

// EmbedStrings 计算文本向量
func (e *HashEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *HashEmbedder) embed(text string) []float64 {
	vec := make([]float64, e.dim)

	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) > hashTokenCap {
		tokens = tokens[:hashTokenCap]
	}
	if len(tokens) == 0 {
		return vec
	}

	for _, tok := range tokens {
		sum := md5.Sum([]byte(tok))
		idx := binary.LittleEndian.Uint32(sum[:4]) % uint32(e.dim)
		vec[idx] += 1
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
