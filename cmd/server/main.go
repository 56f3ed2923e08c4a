package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gojo5t5/papertrade/internal/api"
	"github.com/gojo5t5/papertrade/internal/auth"
	"github.com/gojo5t5/papertrade/internal/config"
	"github.com/gojo5t5/papertrade/internal/database"
	"github.com/gojo5t5/papertrade/internal/engine"
	"github.com/gojo5t5/papertrade/internal/kafka"
	"github.com/gojo5t5/papertrade/internal/quotes"
	"github.com/gojo5t5/papertrade/internal/session"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	sessions := session.NewRedisStore(redisClient, cfg.Redis.SessionTTL)

	var producer *kafka.Producer
	var publisher engine.Publisher
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
	}

	quoteClient := quotes.NewClient(cfg.Quotes.BaseURL, cfg.Quotes.Timeout)

	startingCash, err := decimal.NewFromString(cfg.Trading.StartingCash)
	if err != nil {
		logger.Fatal("invalid STARTING_CASH", zap.Error(err))
	}

	eng := engine.New(db, quoteClient, publisher, logger)
	authSvc := auth.NewService(db, startingCash)
	handler := api.NewHandler(eng, authSvc, sessions, quoteClient, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      api.SetupRoutes(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
