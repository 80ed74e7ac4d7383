package retrieval

import "context"

// VectorRepository 定义应用层对“向量存储/检索”的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorRepository interface {
	EnsureFragmentsCollection(ctx context.Context) error
	SearchFragments(ctx context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error)
	ListFragments(ctx context.Context, afterID string, limit int) ([]*VectorFragment, error)
	CountFragments(ctx context.Context) (int64, error)
	InsertFragments(ctx context.Context, fragments []*VectorFragment) error
	DeleteByDocument(ctx context.Context, document string) error
}

type VectorSearchParams struct {
	QueryVector []float32
	TopK        int

	// Document 非空时仅检索指定来源文档。
	Document string
}

type VectorSearchResult struct {
	ID           string
	Score        float32
	DocumentName string
	PageNumber   int
	TextContent  string
}

type VectorFragment struct {
	ID           string
	DocumentName string
	PageNumber   int
	Fingerprint  string
	TextContent  string
	Vector       []float32
}
