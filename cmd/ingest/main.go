package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nirmaan-ai/backend/internal/ingestion"
	"github.com/nirmaan-ai/backend/internal/llm"
	"github.com/nirmaan-ai/backend/internal/metrics"
	"github.com/nirmaan-ai/backend/internal/vector/milvus"
	"github.com/nirmaan-ai/backend/pkg/config"
	appLogger "github.com/nirmaan-ai/backend/pkg/logger"
)

// One-shot batch job: brings both corpora up to date and exits. Not meant
// to run concurrently with itself; the log file has no cross-process lock.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting ingestion batch job")

	metrics.Init()

	milvusClient, err := milvus.NewClient(cfg.Milvus.Endpoint, cfg.Milvus.VectorDim)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	processor := ingestion.NewProcessor(llmClient, milvusClient, cfg.Ingestion.InsertBatchSize)

	ctx := context.Background()

	corpora := []ingestion.Corpus{
		{
			Name:       "general",
			DataDir:    cfg.Corpora.General.DataDir,
			LogFile:    cfg.Corpora.General.LogFile,
			Collection: cfg.Corpora.General.Collection,
			Chunker:    buildChunker(cfg.Corpora.General.Chunking, cfg, llmClient),
		},
		{
			Name:       "rules",
			DataDir:    cfg.Corpora.Rules.DataDir,
			LogFile:    cfg.Corpora.Rules.LogFile,
			Collection: cfg.Corpora.Rules.Collection,
			Chunker:    buildChunker(cfg.Corpora.Rules.Chunking, cfg, llmClient),
		},
	}

	exitCode := 0
	for _, corpus := range corpora {
		if err := milvusClient.EnsureCollection(ctx, corpus.Collection); err != nil {
			appLogger.Error("Failed to ensure collection",
				zap.String("corpus", corpus.Name),
				zap.Error(err),
			)
			exitCode = 1
			continue
		}

		stats, err := processor.Run(ctx, corpus)
		if err != nil {
			appLogger.Error("Ingestion run aborted",
				zap.String("corpus", corpus.Name),
				zap.Error(err),
			)
			exitCode = 1
			continue
		}

		appLogger.Info("Corpus ingestion complete",
			zap.String("corpus", corpus.Name),
			zap.Int("scanned", stats.Scanned),
			zap.Int("skipped", stats.Skipped),
			zap.Int("processed", stats.Processed),
			zap.Int("failed", stats.Failed),
			zap.Int("chunks", stats.Chunks),
		)
	}

	os.Exit(exitCode)
}

func buildChunker(strategy string, cfg *config.Config, llmClient *llm.Client) ingestion.Chunker {
	if strategy == "semantic" {
		return ingestion.NewSemanticChunker(llmClient)
	}
	return ingestion.NewFixedChunker(cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkOverlap)
}
