package handbook

import (
	"fmt"

	"handbook-ai-api/internal/application/retrieval"
	"handbook-ai-api/internal/infrastructure/messaging"
	"handbook-ai-api/internal/workflow/chain"
)

// FactoryOptions 生成流水线的共享配置
type FactoryOptions struct {
	RetrievalK        int
	SamplePerDocument int
	SampleMaxTotal    int
	SampleScanLimit   int
	MaxGroundingChars int
	FragmentCharCap   int

	MaxExpansionIterations int
	WorkerConcurrency      int
	CoveredTail            int

	MaxRetries int
	Backoff    messaging.BackoffConfig

	// ProviderRateLimit 每分钟允许的服务商调用数；0 不限流
	ProviderRateLimit int
}

// RunnerSpec 单个任务的生成参数
type RunnerSpec struct {
	Provider    string
	Model       string
	Temperature float32
	MaxTokens   int
	TargetWords int
}

// ServiceFactory 按任务装配生成流水线。
// 检索引擎与 Eino 链在任务间共享；限流门与字数配置随任务创建。
type ServiceFactory struct {
	engine  *retrieval.Engine
	outline *chain.OutlineChain
	section *chain.SectionChain
	limiter RateLimiter
	opts    FactoryOptions
}

func NewServiceFactory(engine *retrieval.Engine, outline *chain.OutlineChain, section *chain.SectionChain, limiter RateLimiter, opts FactoryOptions) *ServiceFactory {
	if opts.WorkerConcurrency <= 0 {
		opts.WorkerConcurrency = 4
	}
	if opts.MaxExpansionIterations <= 0 {
		opts.MaxExpansionIterations = 20
	}
	return &ServiceFactory{
		engine:  engine,
		outline: outline,
		section: section,
		limiter: limiter,
		opts:    opts,
	}
}

// NewRunner 为一个任务装配完整的生成服务
func (f *ServiceFactory) NewRunner(spec RunnerSpec) *Service {
	gate := NewProviderGate(
		f.opts.WorkerConcurrency,
		f.limiter,
		fmt.Sprintf("ratelimit:llm:%s", spec.Provider),
		f.opts.ProviderRateLimit,
	)

	generator := NewChainGenerator(f.outline, f.section, gate, spec.Provider, spec.Model, spec.Temperature, spec.MaxTokens)

	planner := NewPlanner(f.engine, generator, PlannerConfig{
		TargetWords:       spec.TargetWords,
		SamplePerDocument: f.opts.SamplePerDocument,
		SampleMaxTotal:    f.opts.SampleMaxTotal,
		SampleScanLimit:   f.opts.SampleScanLimit,
		MaxGroundingChars: f.opts.MaxGroundingChars,
		FragmentCharCap:   f.opts.FragmentCharCap,
	})

	writer := NewWriter(f.engine, generator, WriterConfig{
		RetrievalK:        f.opts.RetrievalK,
		MaxGroundingChars: f.opts.MaxGroundingChars,
		FragmentCharCap:   f.opts.FragmentCharCap,
		MaxRetries:        f.opts.MaxRetries,
		Backoff:           f.opts.Backoff,
	})

	ctrlCfg := ControllerConfig{
		TargetWords:   spec.TargetWords,
		MaxIterations: f.opts.MaxExpansionIterations,
		Concurrency:   f.opts.WorkerConcurrency,
		CoveredTail:   f.opts.CoveredTail,
	}

	return NewService(planner, NewController(writer, ctrlCfg), ctrlCfg)
}
