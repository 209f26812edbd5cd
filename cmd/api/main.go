package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightside-news/brightside/config"
	"github.com/brightside-news/brightside/internal/api"
	"github.com/brightside-news/brightside/internal/clients"
	"github.com/brightside-news/brightside/internal/logging"
	"github.com/brightside-news/brightside/internal/pipeline"
	"github.com/brightside-news/brightside/internal/query"
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
	engine := query.NewEngine(articles)

	mux := http.NewServeMux()
	api.NewHandler(engine, curator).Register(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("[API] Listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[API] Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	<-stopChan

	slog.Info("Shutting down API gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("[API] Shutdown failed", slog.String("error", err.Error()))
	}
}

func buildStore(ctx context.Context) (store.ArticleStore, func()) {
	if os.Getenv("ARTICLE_STORE") == "dynamo" {
		return store.NewDynamoStore(clients.GetDynamoDBClient()), func() {}
	}

	pool, err := clients.NewPostgresPool(ctx, clients.PostgresDSNFromEnv())
	if err != nil {
		slog.Error("[API] Failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pg := store.NewPostgresStore(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		slog.Error("[API] Failed to ensure schema", slog.String("error", err.Error()))
		pool.Close()
		os.Exit(1)
	}
	return pg, pool.Close
}

func buildScorer() sentiment.Scorer {
	if os.Getenv("SENTIMENT_BACKEND") == "vader" {
		slog.Info("[API] Using VADER sentiment backend")
		return sentiment.NewVaderScorer()
	}
	return sentiment.NewHugotScorer()
}
