package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"plotchat/internal/config"
	"plotchat/internal/db"
	apihttp "plotchat/internal/http"
	"plotchat/internal/llm"
	"plotchat/internal/repository"
	"plotchat/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		userRepo    repository.UserRepository
		sessionRepo repository.SessionRepository
		health      apihttp.HealthCheck
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		userRepo = repository.NewPgUserRepository(pool)
		sessionRepo = repository.NewPgSessionRepository(pool)
		health = func(ctx context.Context) error { return db.Ping(ctx, pool) }
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		userRepo = repository.NewMemoryUserRepository()
		sessionRepo = repository.NewMemorySessionRepository()
	}

	tokenStore := service.NewMemoryTokenStore()
	limiter := service.NewLoginRateLimiter(cfg.LoginRateWindow(), cfg.LoginRateMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisTokenStore(redisClient)
			limiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateWindow(), cfg.LoginRateMax)
		}
		cancel()
	}

	if cfg.LLMAPIKey == "" {
		logger.Warn("llm api key not configured")
	}
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)

	tokenSvc := service.NewTokenService(cfg.JWTSecret, cfg.AccessTTL(), tokenStore)
	userSvc := service.NewUserService(logger, userRepo, tokenSvc, limiter)
	sentenceSvc := service.NewSentenceService(logger, sessionRepo, llmClient)

	userHandler := apihttp.NewUserHandler(logger, userSvc)
	chatHandler := apihttp.NewChatHandler(logger, sentenceSvc)
	router := apihttp.NewRouter(logger, userHandler, chatHandler, tokenSvc, health)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
