package retrieval

import "errors"

var (
	// ErrVectorDisabled 表示向量检索/索引能力未配置（Milvus 或 Embedder 不可用）。
	ErrVectorDisabled = errors.New("vector retrieval is disabled")
	// ErrEmptyCorpus 表示语料库为空，无法执行检索或规划。
	ErrEmptyCorpus = errors.New("fragment corpus is empty")
	// ErrNoMatches 表示语料非空但检索零命中，按存储故障处理。
	ErrNoMatches = errors.New("no fragments matched against a populated corpus")
)
