package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nirmaan-ai/backend/internal/api/handlers"
	"github.com/nirmaan-ai/backend/internal/cache/redis"
	"github.com/nirmaan-ai/backend/internal/llm"
	"github.com/nirmaan-ai/backend/internal/metrics"
	"github.com/nirmaan-ai/backend/internal/middleware/ratelimit"
	"github.com/nirmaan-ai/backend/internal/middleware/security"
	"github.com/nirmaan-ai/backend/internal/query"
	"github.com/nirmaan-ai/backend/internal/search/web"
	"github.com/nirmaan-ai/backend/internal/translate"
	"github.com/nirmaan-ai/backend/internal/vector/milvus"
	"github.com/nirmaan-ai/backend/pkg/config"
	appLogger "github.com/nirmaan-ai/backend/pkg/logger"
)

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

	appLogger.Info("Starting building-code QA API server")

	metrics.Init()

	milvusClient, err := milvus.NewClient(cfg.Milvus.Endpoint, cfg.Milvus.VectorDim)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	collections := []string{cfg.Corpora.General.Collection, cfg.Corpora.Rules.Collection}
	for _, collection := range collections {
		if err := milvusClient.EnsureCollection(context.Background(), collection); err != nil {
			appLogger.Fatal("Failed to ensure collection",
				zap.String("collection", collection),
				zap.Error(err),
			)
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	searchClient := web.NewClient(cfg.Search.SerpAPIKey, cfg.Search.TimeoutSec)

	// A missing translation backend is permanent for this process: every
	// answer carries the placeholder instead.
	var translator query.Translator
	translateClient, err := translate.NewClient(cfg.Translate.APIKey)
	if err != nil {
		appLogger.Warn("Translation backend unavailable, answers will carry a placeholder", zap.Error(err))
	} else {
		translator = translateClient
	}

	var answerCache query.AnswerCache
	var embeddingCache query.EmbeddingCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			answerCache = redisClient
			embeddingCache = redisClient
		}
	}

	engine := query.NewEngine(
		llmClient,
		llmClient,
		milvusClient,
		searchClient,
		translator,
		answerCache,
		query.Options{
			Collections:    collections,
			WebResults:     cfg.Search.MaxResults,
			TargetLang:     cfg.Translate.TargetLanguage,
			AnswerTTL:      time.Duration(cfg.Redis.AnswerTTLMin) * time.Minute,
			EmbeddingCache: embeddingCache,
		},
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware())

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Server.RequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	askHandler := handlers.NewAskHandler(engine)

	app.Post("/ask", askHandler.HandleAsk)
	app.Get("/metrics", metrics.MetricsHandler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
