// Backfills the embedding column for catalog sites that have none, so the
// ranked retrieval tier can serve them.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	database "github.com/nileways/trip-planner/app/db"
	"github.com/nileways/trip-planner/config"
	"github.com/nileways/trip-planner/internal/embedding"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := pgxpool.New(ctx, dbConfig.ConnectionURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Connected to database successfully")

	embedder, err := embedding.NewGeminiEmbedder(ctx, cfg.LLM.EmbeddingModel, cfg.Planner.EmbeddingDim, logger)
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	rows, err := dbpool.Query(ctx, `
		SELECT id, name, city, description
		FROM sites
		WHERE embedding IS NULL OR cardinality(embedding) = 0`)
	if err != nil {
		log.Fatalf("Failed to query sites: %v", err)
	}
	defer rows.Close()

	type pending struct {
		id                      string
		name, city, description string
	}
	var sites []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.name, &p.city, &p.description); err != nil {
			log.Fatalf("Failed to scan site: %v", err)
		}
		sites = append(sites, p)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed reading sites: %v", err)
	}
	logger.Info("Sites missing embeddings", slog.Int("count", len(sites)))

	var updated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, site := range sites {
		g.Go(func() error {
			text := fmt.Sprintf("%s. %s. Located in %s, Egypt.", site.name, site.description, site.city)
			vector, err := embedder.Embed(gctx, text)
			if err != nil {
				logger.Error("Failed to embed site, skipping",
					slog.String("site", site.name), slog.Any("error", err))
				return nil
			}
			if _, err := dbpool.Exec(gctx, `UPDATE sites SET embedding = $1 WHERE id = $2`, vector, site.id); err != nil {
				logger.Error("Failed to store embedding",
					slog.String("site", site.name), slog.Any("error", err))
				return nil
			}
			updated.Add(1)
			logger.Info("Embedded site", slog.String("site", site.name))
			return nil
		})
	}
	_ = g.Wait()
	logger.Info("Embedding backfill complete",
		slog.Int64("updated", updated.Load()),
		slog.Int64("skipped", int64(len(sites))-updated.Load()))
}
