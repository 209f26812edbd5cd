package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brightside-news/brightside/config"
	"github.com/brightside-news/brightside/internal/clients"
	"github.com/brightside-news/brightside/internal/logging"
	"github.com/brightside-news/brightside/internal/pipeline"
	"github.com/brightside-news/brightside/internal/sentiment"
	"github.com/brightside-news/brightside/internal/store"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	articles, cleanup := buildStore(ctx)
	defer cleanup()

	var cache pipeline.SeenCache
	if os.Getenv("VALKEY_INIT_ADDRESS") != "" {
		clients.InitValkey()
		defer clients.CloseValkey()
		cache = clients.GetValkeyClient()
	}

	scorer := buildScorer()
	curator := pipeline.New(clients.GetNewsAPIClient(), scorer, articles, cache, pipeline.ConfigFromEnv())

	interval, err := strconv.Atoi(os.Getenv("UPDATE_INTERVAL"))
	if err != nil || interval <= 0 {
		interval = 86400 // Default to one run per day (in seconds)
	}

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	runOnce(ctx, curator)

	for {
		select {
		case <-ticker.C:
			runOnce(ctx, curator)
		case <-stopChan:
			slog.Info("Shutting down curator gracefully...")
			return
		}
	}
}

func runOnce(ctx context.Context, curator *pipeline.Pipeline) {
	result, err := curator.Run(ctx)
	if err != nil {
		slog.Error("[Curator] Run failed", slog.String("error", err.Error()))
		return
	}

	slog.Info("[Curator] Run finished",
		slog.Int("categoriesProcessed", result.CategoriesProcessed),
		slog.Int("articlesFetched", result.ArticlesFetched),
		slog.Int("articlesPositive", result.ArticlesPositive),
		slog.Int("articlesSaved", result.ArticlesSaved),
		slog.Int("categoryErrors", len(result.Errors)))
}

func buildStore(ctx context.Context) (store.ArticleStore, func()) {
	if os.Getenv("ARTICLE_STORE") == "dynamo" {
		return store.NewDynamoStore(clients.GetDynamoDBClient()), func() {}
	}

	pool, err := clients.NewPostgresPool(ctx, clients.PostgresDSNFromEnv())
	if err != nil {
		slog.Error("[Curator] Failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pg := store.NewPostgresStore(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		slog.Error("[Curator] Failed to ensure schema", slog.String("error", err.Error()))
		pool.Close()
		os.Exit(1)
	}
	return pg, pool.Close
}

func buildScorer() sentiment.Scorer {
	if os.Getenv("SENTIMENT_BACKEND") == "vader" {
		slog.Info("[Curator] Using VADER sentiment backend")
		return sentiment.NewVaderScorer()
	}
	return sentiment.NewHugotScorer()
}
