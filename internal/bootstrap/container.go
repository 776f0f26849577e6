package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"news-chatter-be/internal/config"
	"news-chatter-be/internal/constant"
	"news-chatter-be/internal/controller"
	"news-chatter-be/internal/handler"
	"news-chatter-be/internal/mapper"
	"news-chatter-be/internal/pkg/logger"
	"news-chatter-be/internal/repository/implementation"
	"news-chatter-be/internal/repository/memory"
	"news-chatter-be/internal/repository/unitofwork"
	"news-chatter-be/internal/retrieval"
	"news-chatter-be/internal/service"
	"news-chatter-be/internal/session"
	ws "news-chatter-be/internal/websocket"
	"news-chatter-be/pkg/database"
	"news-chatter-be/pkg/embedding"
	"news-chatter-be/pkg/enhance"
	"news-chatter-be/pkg/events"
	llmfactory "news-chatter-be/pkg/llm/factory"
	natsbus "news-chatter-be/pkg/nats"
	"news-chatter-be/pkg/speech/stt"
	"news-chatter-be/pkg/speech/tts"
)

const preferenceCacheTTL = 5 * time.Minute

// Container builds and holds every long-lived dependency.
type Container struct {
	Config *config.Config
	Logger logger.ILogger

	DB       *gorm.DB
	Registry *ws.SessionRegistry
	Bus      events.IPublisher

	ChatterHandler *handler.ChatterHandler
	UserController *controller.UserController
	Consumer       *service.ConsumerService

	pubsub *gochannel.GoChannel
}

func NewContainer(cfg *config.Config) (*Container, error) {
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	// The voice pipeline is chatty; keep its logs out of the main stream.
	chatterLogger := logger.NewIsolatedLogger("chatter.log")

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	chunkMapper := mapper.NewChunkMapper()
	userMapper := mapper.NewUserMapper()
	historyMapper := mapper.NewHistoryMapper()

	chunkRepo := implementation.NewChunkRepository(db, chunkMapper)
	userRepo := implementation.NewUserRepository(db, userMapper)
	historyRepo := implementation.NewHistoryRepository(db, historyMapper)
	uow := unitofwork.NewUnitOfWork(db, userMapper, historyMapper)

	prefCache := memory.NewPreferenceCache(preferenceCacheTTL)
	userService := service.NewUserService(userRepo, historyRepo, prefCache, appLogger)

	embedder, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Keys.GoogleGemini,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
	)
	if err != nil {
		return nil, err
	}

	generator, err := llmfactory.New(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Keys.GoogleGemini, cfg.Ai.OllamaBaseURL)
	if err != nil {
		return nil, err
	}

	enhancer := enhance.NewEnhancer(generator, constant.EnhancementPromptTemplate)
	ranker := retrieval.NewRanker(cfg.Retrieval.DocsK, cfg.Retrieval.RecencyLambda)
	aggregator := retrieval.NewAggregator(embedder, chunkRepo, ranker, chatterLogger, cfg.Retrieval.FetchK, cfg.Timeouts.Retrieve)

	transcriber := stt.NewGeminiTranscriber(cfg.Keys.GoogleGemini, cfg.Ai.SttModel)
	synthesizer := tts.NewGeminiSynthesizer(cfg.Keys.GoogleGemini, cfg.Ai.TtsModel, cfg.Ai.TtsVoice)

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	publisherService := service.NewPublisherService(pubsub, cfg.Keys.TurnTopic)
	consumer := service.NewConsumerService(pubsub, uow, cfg.Keys.TurnTopic, appLogger)

	// Analytics are best effort: a missing broker must not stop the service.
	var bus events.IPublisher
	natsPublisher, err := natsbus.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		appLogger.Warn("bootstrap", "nats unavailable, turn events disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		bus = natsPublisher
	}

	registry, err := ws.NewSessionRegistry(cfg.App.RedisURL, appLogger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	orchestrator := session.NewOrchestrator(
		transcriber,
		enhancer,
		aggregator,
		generator,
		synthesizer,
		userService,
		publisherService,
		bus,
		chatterLogger,
		cfg.Timeouts,
	)

	return &Container{
		Config:         cfg,
		Logger:         appLogger,
		DB:             db,
		Registry:       registry,
		Bus:            bus,
		ChatterHandler: handler.NewChatterHandler(orchestrator, registry, chatterLogger),
		UserController: controller.NewUserController(userService),
		Consumer:       consumer,
		pubsub:         pubsub,
	}, nil
}

// Close releases broker and cache connections; call it on shutdown.
func (c *Container) Close(ctx context.Context) {
	if c.pubsub != nil {
		if err := c.pubsub.Close(); err != nil {
			c.Logger.Warn("bootstrap", "failed to close pubsub", map[string]interface{}{"error": err.Error()})
		}
	}
	if c.Bus != nil {
		c.Bus.Close()
	}
	if c.Registry != nil {
		if err := c.Registry.Close(); err != nil {
			c.Logger.Warn("bootstrap", "failed to close redis", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = c.Logger.Sync()
}
