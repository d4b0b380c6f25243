package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dealsight/dealsight-engine/pkg/config"
	"github.com/dealsight/dealsight-engine/pkg/datasource/mssql"
	"github.com/dealsight/dealsight-engine/pkg/generator"
	"github.com/dealsight/dealsight-engine/pkg/handlers"
	"github.com/dealsight/dealsight-engine/pkg/llm"
	"github.com/dealsight/dealsight-engine/pkg/logging"
	"github.com/dealsight/dealsight-engine/pkg/middleware"
	"github.com/dealsight/dealsight-engine/pkg/schema"
	"github.com/dealsight/dealsight-engine/pkg/sqlsafe"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.MSSQL.User, cfg.MSSQL.Host, cfg.MSSQL.Port, cfg.MSSQL.Database)),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Bool("redis", cfg.Redis.IsConfigured()),
		zap.Bool("live_schema", cfg.Schema.LiveRefresh))

	ctx := context.Background()

	executor, err := mssql.Open(ctx, &cfg.MSSQL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to reporting database", zap.Error(err))
	}
	defer executor.Close()

	var redisClient *redis.Client
	if cfg.Redis.IsConfigured() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, schema cache runs in-memory only", zap.Error(err))
			redisClient = nil
		}
	}

	var refresher schema.Refresher
	if cfg.Schema.LiveRefresh {
		refresher = schema.NewInformationSchemaRefresher(executor.DB(), cfg.MSSQL.Database)
	}
	registry := schema.NewRegistry(refresher, redisClient,
		time.Duration(cfg.Schema.CacheTTLMinutes)*time.Minute, logger)

	llmClient, err := llm.NewClient(&llm.Config{
		Endpoint:  cfg.LLM.Endpoint,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		Timeout:   time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		MaxTokens: cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	validator := sqlsafe.NewStrictValidator(registry, 0)
	gen := generator.New(llmClient, registry, validator, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(gen, executor, logger).RegisterRoutes(mux)
	handlers.NewAskHandler(llmClient, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting dealsight-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
