// Package main 手册生成 Worker 入口
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"handbook-ai-api/internal/application/handbook"
	"handbook-ai-api/internal/config"
	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/internal/infrastructure/messaging"
	"handbook-ai-api/internal/wire"
	"handbook-ai-api/pkg/logger"
	"handbook-ai-api/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "handbook-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	deps, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	w := &worker{cfg: cfg, deps: deps}
	deps.Consumer.RegisterHandler("handbook_gen", w.handleHandbookJob)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := deps.Consumer.Start(runCtx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}
	go deps.Consumer.MonitorDLQ(runCtx, 100)

	logger.Info(ctx, "handbook-worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down worker...")
	cancel()
	deps.Consumer.Stop()
	logger.Info(ctx, "worker exited")
}

type worker struct {
	cfg  *config.Config
	deps *wire.WorkerDeps
}

// handleHandbookJob 执行一个手册生成任务。
// 返回错误会触发消息层的退避重试，超过重试上限进入死信队列。
func (w *worker) handleHandbookJob(ctx context.Context, msg *messaging.Message) error {
	var payload messaging.HandbookJobMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return err
	}

	log := logger.FromContext(ctx)

	job, err := w.deps.JobRepo.GetByID(ctx, payload.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", payload.JobID)
	}
	if job.Status == entity.JobStatusCancelled {
		log.Info("job cancelled, skipping", "job_id", job.ID)
		return nil
	}

	job.Start()
	if err := w.deps.JobRepo.Update(ctx, job); err != nil {
		return err
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go w.watchCancellation(runCtx, job.ID, cancelRun)

	spec := handbook.RunnerSpec{
		Provider:    payload.Provider,
		Model:       payload.Model,
		TargetWords: payload.TargetWords,
	}
	if p, ok := w.cfg.LLM.Providers[payload.Provider]; ok {
		spec.Temperature = float32(p.Temperature)
		spec.MaxTokens = p.MaxTokens
	}
	runner := w.deps.Factory.NewRunner(spec)

	progress := func(p int, stage string) {
		job.UpdateProgress(p, stage)
		if err := w.deps.JobRepo.Update(ctx, job); err != nil {
			log.Warn("failed to persist progress", "job_id", job.ID, "error", err)
		}
	}

	doc, diag, runErr := runner.Run(runCtx, handbook.RunParams{
		JobID:       job.ID,
		Topic:       payload.Topic,
		TargetWords: payload.TargetWords,
	}, progress)

	if runErr != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			// 运行期间任务被取消
			job.Cancel()
			_ = w.deps.JobRepo.Update(ctx, job)
			return nil
		}
		job.Fail(runErr.Error())
		if err := w.deps.JobRepo.Update(ctx, job); err != nil {
			log.Error("failed to mark job failed", "job_id", job.ID, "error", err)
		}
		return runErr
	}

	if err := w.deps.DocumentRepo.Create(ctx, doc); err != nil {
		job.Fail("failed to persist document")
		_ = w.deps.JobRepo.Update(ctx, job)
		return err
	}

	diagJSON, err := json.Marshal(diag)
	if err != nil {
		diagJSON = nil
	}
	job.Complete(doc.ID, diagJSON)
	if err := w.deps.JobRepo.Update(ctx, job); err != nil {
		return err
	}

	log.Info("handbook job completed",
		"job_id", job.ID,
		"document_id", doc.ID,
		"word_count", doc.WordCount,
	)
	return nil
}

// watchCancellation 轮询任务状态，发现取消就终止生成。
// 取消在节点级操作之间生效，正在进行的单次服务商调用随 context 终止。
func (w *worker) watchCancellation(ctx context.Context, jobID string, cancel context.CancelFunc) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.deps.JobRepo.GetByID(ctx, jobID)
			if err != nil || job == nil {
				continue
			}
			if job.Status == entity.JobStatusCancelled {
				logger.FromContext(ctx).Info("job cancellation detected", "job_id", jobID)
				cancel()
				return
			}
		}
	}
}
