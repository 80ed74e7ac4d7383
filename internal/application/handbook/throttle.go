package handbook

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"handbook-ai-api/pkg/logger"
)

// RateLimiter 对模型服务商调用的限流依赖（port），由 Redis 滑动窗口实现。
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// ProviderGate 约束对生成服务商的并发与速率。
// 信号量限制在途调用数；限流不通过时排队等待而不是失败。
// 持有的槽位不会跨退避等待持有：调用方每次尝试独立 Acquire/Release。
type ProviderGate struct {
	sem     *semaphore.Weighted
	limiter RateLimiter
	key     string
	limit   int
	window  time.Duration
	poll    time.Duration
}

func NewProviderGate(concurrency int, limiter RateLimiter, key string, perMinute int) *ProviderGate {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ProviderGate{
		sem:     semaphore.NewWeighted(int64(concurrency)),
		limiter: limiter,
		key:     key,
		limit:   perMinute,
		window:  time.Minute,
		poll:    500 * time.Millisecond,
	}
}

// Acquire 获取一个调用槽位，必要时等待限流窗口释放配额。
// 成功后必须调用 Release。
func (g *ProviderGate) Acquire(ctx context.Context) error {
	if g == nil || g.sem == nil {
		return nil
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	if g.limiter == nil || g.limit <= 0 {
		return nil
	}

	for {
		allowed, err := g.limiter.Allow(ctx, g.key, g.limit, g.window)
		if err != nil {
			// 限流器故障时放行，避免 Redis 抖动阻塞整个生成
			logger.FromContext(ctx).Warn("rate limiter unavailable, proceeding", "error", err)
			return nil
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			g.sem.Release(1)
			return ctx.Err()
		case <-time.After(g.poll):
		}
	}
}

// Release 归还调用槽位
func (g *ProviderGate) Release() {
	if g == nil || g.sem == nil {
		return
	}
	g.sem.Release(1)
}
