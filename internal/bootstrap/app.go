package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"gorm.io/gorm"

	"gopherai-pdfqa/internal/ai"
	"gopherai-pdfqa/internal/app"
	"gopherai-pdfqa/internal/config"
	"gopherai-pdfqa/internal/pkg/pdfextract"
	mysqlClient "gopherai-pdfqa/internal/platform/mysql"
	rabbitmqClient "gopherai-pdfqa/internal/platform/rabbitmq"
	redisClient "gopherai-pdfqa/internal/platform/redis"
	"gopherai-pdfqa/internal/rag"
	"gopherai-pdfqa/internal/repository"
	"gopherai-pdfqa/internal/storage"
	"gopherai-pdfqa/internal/worker"
)

// App holds the process-wide singletons. Nothing in it changes after New
// returns, so handlers share it freely.
type App struct {
	Config    *config.Config
	Embedder  embeddings.Embedder
	Generator *ai.Generator
	Pipeline  *rag.Pipeline
	Uploads   *storage.UploadStore
	QA        *app.QAService

	// optional, nil when disabled
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Publisher   *rabbitmqClient.QueryPublisher
	AuditRepo   *repository.QueryRecordRepository
	AuditWorker *worker.QueryRecordWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	SetupLogger(cfg.App)
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, StartedAt: time.Now()}

	embedder, err := ai.NewEmbedder(cfg.LLM, nil)
	if err != nil {
		return nil, err
	}
	chatModel, err := ai.NewChatModel(cfg.LLM, nil)
	if err != nil {
		return nil, err
	}
	a.Embedder = embedder
	a.Generator = ai.NewGenerator(chatModel)

	a.Pipeline, err = NewPipeline(cfg, a.Embedder, a.Generator)
	if err != nil {
		return nil, err
	}

	a.Uploads, err = storage.NewUploadStore(cfg.RAG.UploadDir)
	if err != nil {
		return nil, err
	}

	if err := a.connectOptional(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	var publisher app.EventPublisher = app.NoopPublisher{}
	if a.Publisher != nil {
		publisher = a.Publisher
	}
	a.QA = app.NewQAService(a.Uploads, a.Pipeline, publisher, cfg.RAG.DocumentExtension)

	log.Info().
		Str("llm", cfg.LLM.BaseURL).
		Str("chat_model", cfg.LLM.ChatModel).
		Str("embedding_model", cfg.LLM.EmbeddingModel).
		Bool("audit", cfg.Audit.Enabled).
		Bool("redis", cfg.Redis.Enabled).
		Msg("application initialized")
	return a, nil
}

// NewPipeline builds the document pipeline from configuration.
func NewPipeline(cfg *config.Config, embedder embeddings.Embedder, generator rag.Generator) (*rag.Pipeline, error) {
	lenFunc := rag.RuneLen
	if cfg.RAG.LengthUnit == config.LengthUnitTokens {
		tokenLen, err := rag.TokenLen(cfg.RAG.TokenEncoding)
		if err != nil {
			return nil, err
		}
		lenFunc = tokenLen
	}
	prompt, err := rag.NewPromptBuilder(cfg.RAG.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}
	return rag.NewPipeline(
		pdfextract.New(),
		rag.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, lenFunc),
		embedder,
		prompt,
		generator,
		rag.WithTopK(cfg.RAG.TopK),
		rag.WithTimeout(time.Duration(cfg.LLM.RequestTimeoutSeconds)*time.Second),
	), nil
}

func (a *App) connectOptional(ctx context.Context) error {
	cfg := a.Config
	if cfg.Redis.Enabled {
		client, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = client
	}
	if !cfg.Audit.Enabled {
		return nil
	}

	db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return err
	}
	a.MySQL = db
	a.AuditRepo = repository.NewQueryRecordRepository(db)
	if err := a.AuditRepo.Migrate(); err != nil {
		return err
	}

	conn, err := rabbitmqClient.New(cfg.RabbitMQ.URL, cfg.Audit.Queue)
	if err != nil {
		return err
	}
	a.MQConn = conn
	a.Publisher = rabbitmqClient.NewQueryPublisher(conn, cfg.Audit.Queue)

	a.AuditWorker = worker.NewQueryRecordWorker(conn, a.AuditRepo, cfg.Audit.Queue)
	if err := a.AuditWorker.Start(ctx); err != nil {
		return fmt.Errorf("start audit worker failed: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MySQL != nil {
		if err := mysqlClient.Close(a.MySQL); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
