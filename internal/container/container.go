package container

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/nileways/trip-planner/app/db"
	"github.com/nileways/trip-planner/config"
	"github.com/nileways/trip-planner/internal/api/catalog"
	"github.com/nileways/trip-planner/internal/api/chat"
	"github.com/nileways/trip-planner/internal/api/narrative"
	"github.com/nileways/trip-planner/internal/api/trip"
	"github.com/nileways/trip-planner/internal/embedding"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *slog.Logger
	Pool        *pgxpool.Pool
	TripHandler *trip.HandlerImpl
	ChatHandler *chat.HandlerImpl
}

// NewContainer initializes and returns a new dependency container. The Gemini
// layers are optional: without an API key the embedder degrades to the local
// hash embedder, day itineraries come from the template and the chat endpoint
// is not served.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	catalogRepo := catalog.NewPostgresCatalogRepository(pool, logger)
	retriever := catalog.NewRetriever(catalogRepo, rng, logger)

	var embedder embedding.Embedder
	embedder, err = embedding.NewGeminiEmbedder(ctx, cfg.LLM.EmbeddingModel, cfg.Planner.EmbeddingDim, logger)
	if err != nil {
		logger.Warn("Gemini embedder unavailable, using local hash embedder", slog.Any("error", err))
		embedder = embedding.NewLocalEmbedder(cfg.Planner.EmbeddingDim)
	}

	var narrator narrative.Generator
	if g, err := narrative.NewGeminiGenerator(ctx, cfg.LLM.Model, cfg.LLM.NarrativeTimeout, logger); err != nil {
		logger.Warn("Gemini narrator unavailable, day itineraries will use the template", slog.Any("error", err))
	} else {
		narrator = g
	}

	tripService := trip.NewServiceImpl(retriever, embedder, narrator, cfg.Planner, logger)
	tripHandler := trip.NewHandlerImpl(tripService, logger)

	var chatHandler *chat.HandlerImpl
	if client, err := chat.NewGeminiClient(ctx, cfg.LLM.Model, logger); err != nil {
		logger.Warn("Gemini chat client unavailable, chat intake disabled", slog.Any("error", err))
	} else {
		chatHandler = chat.NewHandlerImpl(chat.NewServiceImpl(client, logger), logger)
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Pool:        pool,
		TripHandler: tripHandler,
		ChatHandler: chatHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
