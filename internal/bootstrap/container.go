package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/MarkerAnn/wine-backend/internal/config"
	"github.com/MarkerAnn/wine-backend/internal/controller"
	"github.com/MarkerAnn/wine-backend/internal/pkg/logger"
	"github.com/MarkerAnn/wine-backend/internal/repository/unitofwork"
	"github.com/MarkerAnn/wine-backend/internal/service"
	"github.com/MarkerAnn/wine-backend/pkg/embedding"
	"github.com/MarkerAnn/wine-backend/pkg/llm/factory"
	"github.com/MarkerAnn/wine-backend/pkg/lock"
	ragcontext "github.com/MarkerAnn/wine-backend/pkg/rag/context"
	"github.com/MarkerAnn/wine-backend/pkg/rag/response"
	"github.com/MarkerAnn/wine-backend/pkg/rag/search"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WineController  controller.IWineController
	AskController   controller.IAskController
	IndexController controller.IIndexController
	StatsController controller.IStatsController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// IngestService is exposed for the CLI runner.
	IngestService service.IIngestService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.OpenAIAPIKey,
			cfg.Ai.OpenAIBaseURL,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingDimensions,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	// Query embeddings are cached; ingestion always hits the provider so a
	// rebuild never reads stale vectors out of the cache.
	queryEmbedder := embedding.NewCachedProvider(
		embeddingProvider,
		time.Duration(cfg.Ai.QueryCacheTTLSec)*time.Second,
	)

	// 4. LLM provider
	llmBaseURL := cfg.Ai.OpenAIBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Ingest lock: Redis when configured so multiple instances agree,
	// in-process otherwise.
	var ingestLock lock.IngestLock = lock.NewLocalLock()
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		ingestLock = lock.NewRedisLock(rdb, time.Duration(cfg.Ingest.LockTTLSec)*time.Second)
	}

	// 6. Retrieval pipeline
	ragLogger := initRagLogger()
	orchestrator := search.NewOrchestrator(queryEmbedder, ragLogger)
	assembler := ragcontext.NewAssembler(cfg.Rag.ContextTokenBudget, ragLogger)
	generator := response.NewGenerator(llmProvider, ragLogger)

	searchConfig := search.DefaultConfig()
	searchConfig.TopK = cfg.Rag.TopK
	searchConfig.SimilarityFloor = cfg.Rag.SimilarityFloor

	// 7. Services
	publisherService := service.NewPublisherService(cfg.Ingest.RebuildTopic, pubSub)
	ingestService := service.NewIngestService(
		uowFactory,
		embeddingProvider, // uncached: documents must be re-embedded for real
		publisherService,
		ingestLock,
		cfg.Ingest.BatchSize,
		sysLogger,
	)
	consumerService := service.NewConsumerService(pubSub, cfg.Ingest.RebuildTopic, ingestService, sysLogger)

	wineService := service.NewWineService(uowFactory, orchestrator, searchConfig)
	askService := service.NewAskService(uowFactory, orchestrator, assembler, generator, searchConfig, sysLogger)
	statsService := service.NewStatsService(uowFactory, time.Duration(cfg.Stats.CacheTTLSec)*time.Second, sysLogger)

	return &Container{
		WineController:  controller.NewWineController(wineService),
		AskController:   controller.NewAskController(askService, sysLogger),
		IndexController: controller.NewIndexController(ingestService),
		StatsController: controller.NewStatsController(statsService),

		ConsumerService: consumerService,
		IngestService:   ingestService,
		Logger:          sysLogger,
	}
}

// initRagLogger writes the retrieval pipeline's chatter to its own file so
// prompt and ranking traces don't drown the application log.
func initRagLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
