package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"shopsmart/internal/assistant"
	"shopsmart/internal/config"
	"shopsmart/internal/db"
	"shopsmart/internal/observability"
	"shopsmart/internal/repository"
)

func main() {
	cfg := config.Load()
	log := observability.NewLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "assistant",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to Postgres")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()

	openaiCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		openaiCfg.BaseURL = cfg.OpenAIBaseURL
	}

	srv := &assistant.Server{
		Catalog:  &repository.ProductRepository{DB: pool},
		Sessions: &assistant.SessionStore{Client: redisClient, TTL: cfg.SessionTTL},
		LLM:      openai.NewClientWithConfig(openaiCfg),
		Model:    cfg.OpenAIModel,
		Log:      log,
	}

	observability.Start(cfg.MetricsPort)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("metrics_port", cfg.MetricsPort).Msg("Shopping assistant listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server stopped")
	}
}
