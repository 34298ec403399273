package bootstrap

import (
	"context"
	"log"
	"os"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/implementation"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/pkg/corpussearch"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/engine"
	"ai-docchat-be/pkg/engine/clarity"
	"ai-docchat-be/pkg/engine/fallback"
	"ai-docchat-be/pkg/engine/retrieval"
	"ai-docchat-be/pkg/engine/route"
	"ai-docchat-be/pkg/engine/session"
	"ai-docchat-be/pkg/engine/synthesis"
	"ai-docchat-be/pkg/llm/factory"
	pktNats "ai-docchat-be/pkg/nats"
	"ai-docchat-be/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	CorpusController controller.ICorpusController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Observability
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	engineLogger := log.New(os.Stdout, "", log.LstdFlags)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	webProvider, err := websearch.NewProvider(cfg.Search.WebProvider, cfg.Keys.Tavily)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize web search provider: %v", err)
	}
	log.Printf("[INFO] Using Web Search Provider: %s", cfg.Search.WebProvider)

	// 4. Session Storage
	var turnStore contract.TurnStore
	if cfg.App.SessionBackend == "memory" {
		turnStore = memory.NewTurnStore()
		log.Printf("[INFO] Using Session Backend: MEMORY")
	} else {
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
		turnStore = implementation.NewRedisTurnStore(rdb)
		log.Printf("[INFO] Using Session Backend: REDIS")
	}

	// 5. NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 6. Engine Assembly
	sessionProvider := session.NewProvider(turnStore, cfg.Engine.MaxContextTurns, engineLogger)

	passageSearcher := corpussearch.NewSearcher(
		embeddingProvider,
		implementation.NewPassageRepository(db),
		engineLogger,
	)

	orchestrator := engine.NewOrchestrator(
		sessionProvider,
		clarity.NewClassifier(llmProvider, cfg.Engine.ClarityTimeout, engineLogger),
		route.NewSelector(llmProvider, cfg.Engine.RouteTimeout, engineLogger),
		retrieval.NewCorpusStep(passageSearcher, llmProvider, cfg.Search.CorpusTopK, cfg.Engine.RetrievalTimeout, engineLogger),
		retrieval.NewWebStep(webProvider, llmProvider, cfg.Search.WebMaxResults, cfg.Engine.RetrievalTimeout, engineLogger),
		fallback.NewController(engineLogger),
		synthesis.NewSynthesizer(llmProvider, cfg.Engine.SynthesisTimeout, engineLogger),
		engineLogger,
	)

	// 7. Services
	publisherService := service.NewPublisherService(cfg.Engine.IndexTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Engine.IndexTopicName,
		uowFactory,
		embeddingProvider,
	)

	chatService := service.NewChatService(orchestrator, sessionProvider, natsPub, sysLogger)
	corpusService := service.NewCorpusService(uowFactory, publisherService, natsPub, sysLogger)

	return &Container{
		ChatController:   controller.NewChatController(chatService),
		CorpusController: controller.NewCorpusController(corpusService),
		ConsumerService:  consumerService,
		Logger:           sysLogger,
	}
}
