// Package main 系统初始化工具：建表并准备向量集合
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"handbook-ai-api/internal/config"
	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	deps, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	fmt.Println("Migrating PostgreSQL schema...")
	if err := deps.PgClient.DB().AutoMigrate(
		&entity.HandbookJob{},
		&entity.Document{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	fmt.Println("Ensuring Milvus fragments collection...")
	if err := deps.VectorRepo.EnsureFragmentsCollection(ctx); err != nil {
		log.Fatalf("failed to ensure fragments collection: %v", err)
	}

	fmt.Println("Bootstrap completed successfully.")
}
