// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"
	"os"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	goredis "github.com/redis/go-redis/v9"

	"handbook-ai-api/internal/application/handbook"
	"handbook-ai-api/internal/application/ingest"
	"handbook-ai-api/internal/application/retrieval"
	"handbook-ai-api/internal/config"
	infraembedding "handbook-ai-api/internal/infrastructure/embedding"
	"handbook-ai-api/internal/infrastructure/messaging"
	"handbook-ai-api/internal/infrastructure/persistence/milvus"
	"handbook-ai-api/internal/infrastructure/persistence/postgres"
	"handbook-ai-api/internal/infrastructure/persistence/redis"
	"handbook-ai-api/internal/workflow/chain"
	"handbook-ai-api/pkg/logger"
)

// WorkerDeps 手册生成 Worker 的依赖容器
type WorkerDeps struct {
	PgClient     *postgres.Client
	JobRepo      *postgres.JobRepository
	DocumentRepo *postgres.DocumentRepository
	RedisClient  *redis.Client
	Cache        *redis.Cache
	Consumer     *messaging.Consumer
	Factory      *handbook.ServiceFactory
}

// BootstrapDeps 初始化工具的依赖容器
type BootstrapDeps struct {
	PgClient   *postgres.Client
	VectorRepo *milvus.Repository
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Default().Warn("failed to close postgres client", "error", err)
		}
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Default().Warn("failed to close redis client", "error", err)
		}
	}
	return client, cleanup, nil
}

// ProvideRawRedis 提供底层 go-redis 客户端（消息队列使用）
func ProvideRawRedis(client *redis.Client) *goredis.Client {
	return client.Redis()
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(rdb *goredis.Client, cfg *config.Config) *messaging.Producer {
	return messaging.NewProducer(rdb, int64(cfg.Messaging.RedisStream.MaxLen))
}

// ProvideMilvusClient 提供 Milvus 客户端（必需，不可达时返回错误）
func ProvideMilvusClient(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect milvus: %w", err)
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Default().Warn("failed to close milvus client", "error", err)
		}
	}
	return client, cleanup, nil
}

// ProvideMilvusClientOptional 提供可选 Milvus 客户端。
// API 网关在向量库不可达时仍可启动，摄取与检索接口会返回 503。
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Default().Warn("milvus unavailable, vector features disabled", "error", err)
		return nil, func() {}, nil
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Default().Warn("failed to close milvus client", "error", err)
		}
	}
	return client, cleanup, nil
}

// ProvideMilvusRepository 提供 Milvus 仓储
func ProvideMilvusRepository(client *milvus.Client, cfg *config.Config) *milvus.Repository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client, cfg.Embedding.Dimension)
}

// ProvideVectorRepository 提供检索层向量仓储端口
func ProvideVectorRepository(repo *milvus.Repository) retrieval.VectorRepository {
	if repo == nil {
		return nil
	}
	return milvus.NewRetrievalVectorRepository(repo)
}

// ProvideEmbedder 提供向量化客户端
func ProvideEmbedder(ctx context.Context, cfg *config.Config) (einoembedding.Embedder, error) {
	return infraembedding.NewEmbedder(ctx, &cfg.Embedding)
}

// ProvideRetrievalEngine 提供检索引擎
func ProvideRetrievalEngine(embedder einoembedding.Embedder, vectorRepo retrieval.VectorRepository) *retrieval.Engine {
	return retrieval.NewEngine(embedder, vectorRepo)
}

// ProvideRetrievalIndexer 提供片段索引器
func ProvideRetrievalIndexer(embedder einoembedding.Embedder, vectorRepo retrieval.VectorRepository, cfg *config.Config) *retrieval.Indexer {
	return retrieval.NewIndexer(embedder, vectorRepo, cfg.Embedding.BatchSize)
}

// ProvideChunker 提供语料切分器
func ProvideChunker(cfg *config.Config) (*ingest.Chunker, error) {
	size := cfg.Handbook.ChunkSize
	overlap := cfg.Handbook.ChunkOverlap
	if size <= 0 {
		size = 1200
	}
	if overlap <= 0 || overlap >= size {
		overlap = size / 6
	}
	return ingest.NewChunker(size, overlap)
}

// ProvideServiceFactory 提供手册生成流水线工厂
func ProvideServiceFactory(engine *retrieval.Engine, outline *chain.OutlineChain, section *chain.SectionChain, limiter *redis.RateLimiter, cfg *config.Config) *handbook.ServiceFactory {
	hb := cfg.Handbook
	return handbook.NewServiceFactory(engine, outline, section, limiter, handbook.FactoryOptions{
		RetrievalK:             hb.RetrievalK,
		SamplePerDocument:      hb.SamplePerDocument,
		SampleMaxTotal:         hb.SampleMaxTotal,
		SampleScanLimit:        hb.SampleScanLimit,
		MaxGroundingChars:      hb.MaxGroundingChars,
		FragmentCharCap:        hb.FragmentCharCap,
		MaxExpansionIterations: hb.MaxExpansionIterations,
		WorkerConcurrency:      hb.WorkerConcurrency,
		CoveredTail:            hb.CoveredTail,
		MaxRetries:             hb.MaxRetries,
		Backoff: messaging.BackoffConfig{
			Initial:    hb.RetryBackoff.Initial,
			Max:        hb.RetryBackoff.Max,
			Multiplier: hb.RetryBackoff.Multiplier,
		},
		ProviderRateLimit: hb.ProviderRateLimit,
	})
}

// consumerName 消费者标识：主机名 + 进程号，保证同机多实例不冲突
func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

// ProvideWorkerConsumer 提供手册任务消费者
func ProvideWorkerConsumer(rdb *goredis.Client, cfg *config.Config) *messaging.Consumer {
	stream := cfg.Messaging.RedisStream
	return messaging.NewConsumer(rdb, messaging.ConsumerConfig{
		Stream:        messaging.StreamHandbookGen,
		Group:         messaging.ConsumerGroupHandbookWorker,
		ConsumerName:  consumerName(),
		BlockTimeout:  stream.BlockTimeout,
		ClaimInterval: stream.ClaimInterval,
		RetryLimit:    stream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    stream.RetryBackoff.Initial,
			Max:        stream.RetryBackoff.Max,
			Multiplier: stream.RetryBackoff.Multiplier,
		},
	})
}
