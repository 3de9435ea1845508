package bootstrap

import (
	"context"
	"log"

	"catalog-assistant-be/internal/config"
	"catalog-assistant-be/internal/controller"
	"catalog-assistant-be/internal/pkg/logger"
	"catalog-assistant-be/internal/repository/contract"
	"catalog-assistant-be/internal/repository/implementation"
	"catalog-assistant-be/internal/repository/memory"
	"catalog-assistant-be/internal/service"
	"catalog-assistant-be/pkg/cache"
	"catalog-assistant-be/pkg/catalog"
	"catalog-assistant-be/pkg/clock"
	"catalog-assistant-be/pkg/embedding"
	llmopenai "catalog-assistant-be/pkg/llm/openai"
	pktNats "catalog-assistant-be/pkg/nats"
	"catalog-assistant-be/pkg/oo2"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CatalogController controller.ICatalogController
	ChatController    controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Exposed for CLI entrypoints
	CatalogService service.ICatalogService
	IndexerService service.IIndexerService

	Logger logger.ILogger
}

// NewContainer wires the whole dependency graph. db may be nil: the vector
// index then lives in memory, which is enough for local development without
// pgvector.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is optional: a missing broker only disables external event fan-out.
	var natsPub service.EventPublisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
	}

	// Cache: Redis when configured, process-local otherwise.
	var cacheStore cache.Cache
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		cacheStore = cache.NewRedisCache(rdb)
		log.Println("[INFO] Using cache: REDIS")
	} else {
		cacheStore = cache.NewLocalCache()
		log.Println("[INFO] Using cache: LOCAL (in-memory)")
	}

	// Vector repository
	var vectorRepo contract.CatalogVectorRepository
	if db != nil {
		vectorRepo = implementation.NewCatalogVectorRepository(db)
		log.Println("[INFO] Using vector index: POSTGRES (pgvector)")
	} else {
		vectorRepo = memory.NewCatalogVectorRepository()
		log.Println("[INFO] Using vector index: MEMORY")
	}

	// 3. Upstream and AI providers
	fetcher := oo2.NewClient(oo2.Config{
		BaseURL:    cfg.Catalog.BaseURL,
		BasicAuth:  cfg.Catalog.BasicAuth,
		TotalPages: cfg.Catalog.TotalPages,
		ChunkSize:  cfg.Catalog.ChunkSize,
		PageDelay:  cfg.Catalog.PageDelay,
		ChunkDelay: cfg.Catalog.ChunkDelay,
		Timeout:    cfg.Catalog.Timeout,
	}, sysLogger)

	embeddingProvider := embedding.NewOpenAIProvider(
		cfg.Ai.OpenAIAPIKey,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.EmbeddingDimensions,
		cfg.Ai.ProviderTimeout,
	)
	log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)

	llmProvider := llmopenai.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.LLMModel, cfg.Ai.ProviderTimeout)
	log.Printf("[INFO] Using LLM Provider: OPENAI (%s)", cfg.Ai.LLMModel)

	normalizer := catalog.NewNormalizer(catalog.IDFallbackPolicy(cfg.Catalog.IDFallbackPolicy))

	// 4. Services
	catalogService := service.NewCatalogService(
		fetcher,
		cacheStore,
		pubSub,
		cfg.Catalog.SyncTopic,
		natsPub,
		cfg.Cache.FormationsTTL,
		cfg.Cache.SessionsTTL,
		sysLogger,
	)

	indexerService := service.NewIndexerService(
		catalogService,
		normalizer,
		embeddingProvider,
		vectorRepo,
		natsPub,
		clock.SystemClock{},
		sysLogger,
	)

	retrievalService := service.NewRetrievalService(
		embeddingProvider,
		vectorRepo,
		cacheStore,
		cfg.Cache.SearchTTL,
		sysLogger,
	)

	chatService := service.NewChatService(
		retrievalService,
		catalogService,
		llmProvider,
		cfg.Ai.ChatMode,
		cfg.Ai.SearchLimit,
		cfg.Ai.OpenAIAPIKey != "",
		sysLogger,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Catalog.SyncTopic,
		indexerService,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		CatalogController: controller.NewCatalogController(catalogService, indexerService),
		ChatController:    controller.NewChatController(chatService, retrievalService, cfg.Ai.SearchLimit),

		ConsumerService: consumerService,
		CatalogService:  catalogService,
		IndexerService:  indexerService,
		Logger:          sysLogger,
	}
}
