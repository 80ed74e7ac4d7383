//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"handbook-ai-api/internal/application/ingest"
	"handbook-ai-api/internal/config"
	"handbook-ai-api/internal/domain/repository"
	"handbook-ai-api/internal/infrastructure/llm"
	"handbook-ai-api/internal/infrastructure/persistence/postgres"
	"handbook-ai-api/internal/infrastructure/persistence/redis"
	"handbook-ai-api/internal/interfaces/http/handler"
	"handbook-ai-api/internal/interfaces/http/router"
	"handbook-ai-api/internal/workflow/chain"
	workflowport "handbook-ai-api/internal/workflow/port"
)

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewJobRepository,
	postgres.NewDocumentRepository,
	wire.Bind(new(repository.HandbookJobRepository), new(*postgres.JobRepository)),
	wire.Bind(new(repository.DocumentRepository), new(*postgres.DocumentRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideRawRedis,
	redis.NewCache,
	redis.NewRateLimiter,
)

// VectorSet 向量库与检索提供者集合（API 侧 Milvus 可选）
var VectorSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideMilvusRepository,
	ProvideVectorRepository,
	ProvideEmbedder,
	ProvideRetrievalEngine,
	ProvideRetrievalIndexer,
)

// IngestSet 语料摄取提供者集合
var IngestSet = wire.NewSet(
	ProvideChunker,
	ingest.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewSourceHandler,
	handler.NewHandbookHandler,
	handler.NewDocumentHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// GenerationSet 生成流水线提供者集合（Worker 侧 Milvus 必需）
var GenerationSet = wire.NewSet(
	ProvideMilvusClient,
	ProvideMilvusRepository,
	ProvideVectorRepository,
	ProvideEmbedder,
	ProvideRetrievalEngine,
	ProvideRetrievalIndexer,
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	chain.NewOutlineChain,
	chain.NewSectionChain,
	ProvideServiceFactory,
)

// InitializeApp 初始化 API 网关
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		ProvideMessagingProducer,
		VectorSet,
		IngestSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化手册生成 Worker
func InitializeWorker(ctx context.Context, cfg *config.Config) (*WorkerDeps, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		GenerationSet,
		ProvideWorkerConsumer,
		wire.Struct(new(WorkerDeps), "*"),
	)
	return nil, nil, nil
}

// InitializeBootstrap 初始化建表工具依赖
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*BootstrapDeps, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		ProvideMilvusClient,
		ProvideMilvusRepository,
		wire.Struct(new(BootstrapDeps), "*"),
	)
	return nil, nil, nil
}
