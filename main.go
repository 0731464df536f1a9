package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"innovation-engine/backend/internal/config"
	"innovation-engine/backend/internal/features/chat/application"
	"innovation-engine/backend/internal/features/chat/domain"
	"innovation-engine/backend/internal/features/chat/infrastructure"
	chat_http "innovation-engine/backend/internal/features/chat/presentation/http"
	config_application "innovation-engine/backend/internal/features/config/application"
	config_http "innovation-engine/backend/internal/features/config/presentation/http"
	"innovation-engine/backend/internal/logger"
	"innovation-engine/backend/internal/middleware"
	"innovation-engine/backend/internal/tracer"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, loaded, err := config.Load(config.DefaultOptions())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	if loaded.EnvFile == "" {
		zlog.Info("No .env file found, using environment variables")
	}
	if loaded.ConfigFile != "" {
		zlog.Info("configuration file loaded", zap.String("path", loaded.ConfigFile))
	}

	if err := domain.ValidateTaxonomy(); err != nil {
		zlog.Fatal("category taxonomy is incomplete", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		zlog.Fatal("Failed to initialise tracing", zap.Error(err))
	}

	// Initialize OpenAI client
	openaiClient, err := infrastructure.NewOpenAIClient(infrastructure.AIConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		OrgID:   cfg.OpenAI.OrgID,
	}, zlog)
	if err != nil {
		zlog.Fatal("Failed to create OpenAI client", zap.Error(err))
	}

	// Initialize services
	chatService, err := application.NewChatService(openaiClient, application.ChatConfig{
		ClassifierModel: cfg.Models.Classifier,
		PrimaryModel:    cfg.Models.Primary,
		SmoothingDelay:  cfg.Chat.SmoothingDelay,
	}, zlog)
	if err != nil {
		zlog.Fatal("Failed to create chat service", zap.Error(err))
	}
	configService, err := config_application.NewConfigService(cfg)
	if err != nil {
		zlog.Fatal("Failed to create config service", zap.Error(err))
	}

	chatHandler, err := chat_http.NewChatHandler(chatService, cfg.Chat.Timeout, zlog)
	if err != nil {
		zlog.Fatal("Failed to create chat handler", zap.Error(err))
	}
	configHandler, err := config_http.NewAppConfigHandler(configService)
	if err != nil {
		zlog.Fatal("Failed to create config handler", zap.Error(err))
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CorrelationID(), middleware.Logger(zlog))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Chat API routes
	r.POST("/api/chat", chatHandler.ChatHandler)

	// Config API routes
	configGroup := r.Group("/api/config")
	{
		configGroup.GET("/app", configHandler.GetAppConfigHandler)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: r,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		zlog.Error("tracer shutdown", zap.Error(err))
	}
}
